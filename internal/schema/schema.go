// Package schema defines the closed set of acquisition modalities and, for
// each modality, the canonical ordered list of naming entities with their
// presence policy. Adding a modality means adding one table row here; no
// other package branches on modality-specific entity lists.
package schema

import (
	"errors"
	"fmt"
)

// Modality is the closed category of acquisition type. It selects which
// entity table applies when composing an output name.
type Modality string

const (
	Anat  Modality = "anat"      // Anatomical (T1w, T2w, FLAIR, ...).
	Func  Modality = "func"      // Functional (task/resting-state BOLD).
	Dwi   Modality = "dwi"       // Diffusion weighted.
	Fmap  Modality = "fmap"      // Field maps (magnitude/phase sets).
	Beh   Modality = "beh"       // Behavioral (no imaging data).
	Pet   Modality = "pet"       // Positron emission tomography.
	Extra Modality = "extra_data" // Catch-all for unclassified series.
)

// Modalities lists every valid modality in canonical order. Extra is last
// so matching engines try the imaging modalities first.
var Modalities = []Modality{Anat, Func, Dwi, Fmap, Beh, Pet, Extra}

// ErrInvalidModality is returned when a modality outside the closed set is
// requested. Fatal to the single call, not to the session.
var ErrInvalidModality = errors.New("invalid modality")

// Valid reports whether m is a member of the closed modality set.
func (m Modality) Valid() bool {
	for _, known := range Modalities {
		if m == known {
			return true
		}
	}
	return false
}

// Check returns a wrapped ErrInvalidModality if m is unknown.
func Check(m Modality) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidModality, m)
	}
	return nil
}

// Presence is the rendering policy for one entity.
type Presence int

const (
	// Mandatory entities are always rendered, even with an empty value
	// (the prefix is emitted with nothing after it).
	Mandatory Presence = iota
	// Conditional entities are rendered only when their resolved value is
	// non-empty.
	Conditional
)

// Entity is one named, ordered component of a composed name. Prefix is the
// literal key prefix including the trailing hyphen ("sub-"); the suffix
// entity has no prefix and emits its bare value.
type Entity struct {
	Key      string
	Prefix   string
	Presence Presence
}

// Entity keys used across modality tables.
const (
	KeySubject        = "subject"
	KeySession        = "session"
	KeyTask           = "task"
	KeyAcquisition    = "acquisition"
	KeyContrast       = "contrast"
	KeyReconstruction = "reconstruction"
	KeyDirection      = "direction"
	KeyRun            = "run"
	KeyModifier       = "modifier"
	KeyEcho           = "echo"
	KeyPart           = "part"
	KeySuffix         = "suffix"
)

// FallbackKey is the free-text label that postfix reconciliation appends
// unrecognized converter tokens to, when the modality's table defines it.
const FallbackKey = KeyAcquisition

func ent(key, prefix string, p Presence) Entity {
	return Entity{Key: key, Prefix: prefix, Presence: p}
}

// tables holds the ordered entity list per modality. The order is the
// rendering order; it never changes at runtime.
//
// extra_data deliberately keeps acquisition mandatory while every imaging
// modality treats it as conditional. That asymmetry is exercised by
// recorded behavior and preserved as-is.
var tables = map[Modality][]Entity{
	Anat: {
		ent(KeySubject, "sub-", Mandatory),
		ent(KeySession, "ses-", Conditional),
		ent(KeyAcquisition, "acq-", Conditional),
		ent(KeyContrast, "ce-", Conditional),
		ent(KeyReconstruction, "rec-", Conditional),
		ent(KeyRun, "run-", Conditional),
		ent(KeyModifier, "mod-", Conditional),
		ent(KeySuffix, "", Mandatory),
	},
	Func: {
		ent(KeySubject, "sub-", Mandatory),
		ent(KeySession, "ses-", Conditional),
		ent(KeyTask, "task-", Mandatory),
		ent(KeyAcquisition, "acq-", Conditional),
		ent(KeyReconstruction, "rec-", Conditional),
		ent(KeyRun, "run-", Conditional),
		ent(KeyEcho, "echo-", Conditional),
		ent(KeyPart, "part-", Conditional),
		ent(KeySuffix, "", Mandatory),
	},
	Dwi: {
		ent(KeySubject, "sub-", Mandatory),
		ent(KeySession, "ses-", Conditional),
		ent(KeyAcquisition, "acq-", Conditional),
		ent(KeyDirection, "dir-", Conditional),
		ent(KeyRun, "run-", Conditional),
		ent(KeySuffix, "", Mandatory),
	},
	Fmap: {
		ent(KeySubject, "sub-", Mandatory),
		ent(KeySession, "ses-", Conditional),
		ent(KeyAcquisition, "acq-", Conditional),
		ent(KeyDirection, "dir-", Conditional),
		ent(KeyRun, "run-", Conditional),
		ent(KeySuffix, "", Mandatory),
	},
	Beh: {
		ent(KeySubject, "sub-", Mandatory),
		ent(KeySession, "ses-", Conditional),
		ent(KeyTask, "task-", Mandatory),
		ent(KeySuffix, "", Mandatory),
	},
	Pet: {
		ent(KeySubject, "sub-", Mandatory),
		ent(KeySession, "ses-", Conditional),
		ent(KeyTask, "task-", Conditional),
		ent(KeyAcquisition, "acq-", Conditional),
		ent(KeyReconstruction, "rec-", Conditional),
		ent(KeyRun, "run-", Conditional),
		ent(KeySuffix, "", Mandatory),
	},
	Extra: {
		ent(KeySubject, "sub-", Mandatory),
		ent(KeySession, "ses-", Conditional),
		ent(KeyAcquisition, "acq-", Mandatory),
		ent(KeyTask, "task-", Conditional),
		ent(KeyContrast, "ce-", Conditional),
		ent(KeyReconstruction, "rec-", Conditional),
		ent(KeyDirection, "dir-", Conditional),
		ent(KeyRun, "run-", Conditional),
		ent(KeyModifier, "mod-", Conditional),
		ent(KeyEcho, "echo-", Conditional),
		ent(KeyPart, "part-", Conditional),
		ent(KeySuffix, "", Conditional),
	},
}

// Entities returns the ordered entity table for a modality. The returned
// slice is a copy; callers may not observe or cause mutation of the table.
func Entities(m Modality) ([]Entity, error) {
	if err := Check(m); err != nil {
		return nil, err
	}
	src := tables[m]
	out := make([]Entity, len(src))
	copy(out, src)
	return out, nil
}

// HasEntity reports whether the modality's table defines an entity with key.
func HasEntity(m Modality, key string) bool {
	for _, e := range tables[m] {
		if e.Key == key {
			return true
		}
	}
	return false
}

// LabelKeys returns the entity keys of a modality excluding subject and
// session, i.e. the keys a run template carries fill values for.
func LabelKeys(m Modality) []string {
	var keys []string
	for _, e := range tables[m] {
		switch e.Key {
		case KeySubject, KeySession:
			continue
		}
		keys = append(keys, e.Key)
	}
	return keys
}
