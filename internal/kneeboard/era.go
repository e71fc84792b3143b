package kneeboard

// Eras.
const (
	EraModern  = "Modern"
	EraColdWar = "ColdWar"
	EraWWII    = "WWII"
)

var aircraftEras = map[string]string{
	// WWII
	"P-51D":            EraWWII,
	"P-51D-30-NA":      EraWWII,
	"TF-51D":           EraWWII,
	"P-47D-30":         EraWWII,
	"P-47D-30bl1":      EraWWII,
	"P-47D-40":         EraWWII,
	"SpitfireLFMkIX":   EraWWII,
	"SpitfireLFMkIXCW": EraWWII,
	"FW-190A8":         EraWWII,
	"FW-190D9":         EraWWII,
	"Bf-109K-4":        EraWWII,
	"MosquitoFBMkVI":   EraWWII,
	"I-16":             EraWWII,
	"Yak-52":           EraWWII,

	// Cold War
	"F-86F Sabre": EraColdWar,
	"MiG-15bis":   EraColdWar,
	"MiG-19P":     EraColdWar,
	"MiG-21Bis":   EraColdWar,
	"F-5E-3":      EraColdWar,
	"Mirage-F1CE": EraColdWar,
	"Mirage-F1EE": EraColdWar,
	"AJS37":       EraColdWar,
	"L-39C":       EraColdWar,
	"L-39ZA":      EraColdWar,
	"C-101CC":     EraColdWar,
	"C-101EB":     EraColdWar,
	"SA342M":      EraColdWar,
	"SA342L":      EraColdWar,
	"Mi-8MT":      EraColdWar,
	"UH-1H":       EraColdWar,
	"F-4E-45MC":   EraColdWar,
	"A-4E-C":      EraColdWar,
}

// EraFor returns the era bucket for an aircraft identifier.
// Unknown aircraft are Modern.
func EraFor(aircraft string) string {
	if era, ok := aircraftEras[aircraft]; ok {
		return era
	}
	return EraModern
}
