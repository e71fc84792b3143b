package mcpserver

// PageNamingContract describes the file names the kneeboard scanner
// understands. LLM consumers should follow it when uploading pages.
const PageNamingContract = `# Kneeview Page Naming Contract

Kneeboard pages are PNG files under the kneeboard root. Files directly in the
root are shared by every aircraft; files in ` + "`" + `<root>/<aircraft>/` + "`" + ` belong to
that aircraft only. Sub-directories below the aircraft directory are ignored.

## Grammar

` + "```" + `
[<order>-]<body>-<page>.png
` + "```" + `

- ` + "`" + `<order>` + "`" + ` is an optional number used only to sort files on disk.
- ` + "`" + `<page>` + "`" + ` is the page number inside the group (1, 2, 3...).
- ` + "`" + `<body>` + "`" + ` uses letters, digits, ` + "`" + `_` + "`" + `, ` + "`" + `-` + "`" + ` and ` + "`" + `;` + "`" + `.

## Body

1. A trailing ` + "`" + `_Night` + "`" + ` marks the night version of a page.
2. Anything after the first ` + "`" + `;` + "`" + ` is a free-form comment and is ignored.
3. The last ` + "`" + `_` + "`" + ` splits group from subgroup: ` + "`" + `CheckList_Quick` + "`" + ` is group
   ` + "`" + `CheckList` + "`" + `, subgroup ` + "`" + `Quick` + "`" + `. Without ` + "`" + `_` + "`" + ` there is no subgroup.
4. Group and subgroup match case-insensitively. Underscores show as spaces.

## Examples

| File | Group | Subgroup | Night | Page |
|---|---|---|---|---|
| ` + "`" + `01-Brevity-1.png` + "`" + ` | Brevity | | no | 1 |
| ` + "`" + `CheckList_Quick-2.png` + "`" + ` | CheckList | Quick | no | 2 |
| ` + "`" + `CheckList_Quick_Night-2.png` + "`" + ` | CheckList | Quick | yes | 2 |
| ` + "`" + `05-Map_Nevada;old-3.png` + "`" + ` | Map | Nevada | no | 3 |
`
