package kneeboard

import (
	"regexp"
	"strconv"
	"strings"
)

const nightSuffix = "_Night"

var (
	// prefix-body-page, e.g. 007-CheckList_Quick-001
	prefixedNameRe = regexp.MustCompile(`^(\d+)-([A-Za-z0-9_\-;]+)-(\d+)$`)
	// body-page, e.g. CheckList_Quick-001
	bareNameRe = regexp.MustCompile(`^([A-Za-z0-9_\-;]+)-(\d+)$`)
)

// PageInfo is the structured form of a page file name.
type PageInfo struct {
	Group    string
	Subgroup Subgroup
	IsNight  bool
	IsDay    bool
	FullName string
	Page     uint32
}

// ParseFilename decodes a file name (without extension) into page metadata.
// ok is false when the name matches neither grammar or the page number does
// not fit an unsigned 32-bit integer; callers skip such files.
func ParseFilename(name string) (PageInfo, bool) {
	var body, page string
	if m := prefixedNameRe.FindStringSubmatch(name); m != nil {
		body, page = m[2], m[3]
	} else if m := bareNameRe.FindStringSubmatch(name); m != nil {
		body, page = m[1], m[2]
	} else {
		return PageInfo{}, false
	}

	n, err := strconv.ParseUint(page, 10, 32)
	if err != nil {
		return PageInfo{}, false
	}

	group, sub, night := splitBody(body)
	return PageInfo{
		Group:    group,
		Subgroup: sub,
		IsNight:  night,
		IsDay:    !night,
		FullName: body,
		Page:     uint32(n),
	}, true
}

// splitBody strips the night suffix, drops everything from the first ';'
// and splits the rest at the last '_' into group and subgroup.
func splitBody(body string) (group string, sub Subgroup, night bool) {
	rest := body
	if strings.HasSuffix(rest, nightSuffix) {
		rest = strings.TrimSuffix(rest, nightSuffix)
		night = true
	}
	if i := strings.Index(rest, ";"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, "_"); i > 0 {
		return rest[:i], SomeSubgroup(rest[i+1:]), night
	}
	return rest, NoSubgroup, night
}

// displayName turns an identifier into a human readable label.
func displayName(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
