package schema

import "testing"

func TestModalityValid(t *testing.T) {
	for _, m := range Modalities {
		if !m.Valid() {
			t.Errorf("Valid(%q) = false, want true", m)
		}
	}
	for _, m := range []Modality{"", "ANAT", "anatomy", "misc"} {
		if m.Valid() {
			t.Errorf("Valid(%q) = true, want false", m)
		}
		if err := Check(m); err == nil {
			t.Errorf("Check(%q) = nil, want ErrInvalidModality", m)
		}
	}
}

func TestEntitiesOrderAndPresence(t *testing.T) {
	ents, err := Entities(Anat)
	if err != nil {
		t.Fatal(err)
	}
	if ents[0].Key != KeySubject || ents[0].Presence != Mandatory {
		t.Errorf("anat[0] = %+v, want mandatory subject", ents[0])
	}
	last := ents[len(ents)-1]
	if last.Key != KeySuffix || last.Prefix != "" || last.Presence != Mandatory {
		t.Errorf("anat last = %+v, want mandatory bare suffix", last)
	}

	if _, err := Entities("nope"); err == nil {
		t.Error("Entities(nope) = nil error, want ErrInvalidModality")
	}
}

// extra_data is the only modality with a mandatory acquisition entity and a
// conditional suffix. This asymmetry is relied on by name composition.
func TestExtraDataAsymmetry(t *testing.T) {
	ents, err := Entities(Extra)
	if err != nil {
		t.Fatal(err)
	}
	var acq, suffix *Entity
	for i := range ents {
		switch ents[i].Key {
		case KeyAcquisition:
			acq = &ents[i]
		case KeySuffix:
			suffix = &ents[i]
		}
	}
	if acq == nil || acq.Presence != Mandatory {
		t.Errorf("extra_data acquisition = %+v, want mandatory", acq)
	}
	if suffix == nil || suffix.Presence != Conditional {
		t.Errorf("extra_data suffix = %+v, want conditional", suffix)
	}
}

func TestHasEntity(t *testing.T) {
	tests := []struct {
		mod  Modality
		key  string
		want bool
	}{
		{Func, KeyEcho, true},
		{Func, KeyPart, true},
		{Anat, KeyEcho, false},
		{Anat, KeyAcquisition, true},
		{Beh, KeyAcquisition, false},
		{Fmap, KeyDirection, true},
	}
	for _, tt := range tests {
		if got := HasEntity(tt.mod, tt.key); got != tt.want {
			t.Errorf("HasEntity(%s, %s) = %v, want %v", tt.mod, tt.key, got, tt.want)
		}
	}
}

func TestEntitiesReturnsCopy(t *testing.T) {
	a, _ := Entities(Dwi)
	a[0].Prefix = "mutated-"
	b, _ := Entities(Dwi)
	if b[0].Prefix != "sub-" {
		t.Error("mutating the returned slice leaked into the table")
	}
}

func TestLabelKeys(t *testing.T) {
	for _, key := range LabelKeys(Func) {
		if key == KeySubject || key == KeySession {
			t.Errorf("LabelKeys(func) contains %q", key)
		}
	}
	found := false
	for _, key := range LabelKeys(Func) {
		if key == KeyRun {
			found = true
		}
	}
	if !found {
		t.Error("LabelKeys(func) is missing the run key")
	}
}
