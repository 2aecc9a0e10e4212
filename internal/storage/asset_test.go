package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
	"gopkg.in/yaml.v3"
)

// testSpec is a simple ValidatingSpec for testing
type testSpec struct {
	valid bool
}

func (s *testSpec) Validate() error {
	if !s.valid {
		return fmt.Errorf("spec is invalid")
	}
	return nil
}

func TestAsset_Validate(t *testing.T) {
	tests := map[string]struct {
		asset   Asset[*testSpec]
		expErrs []string
	}{
		"valid asset": {
			asset: Asset[*testSpec]{
				Version:    1,
				Identifier: "test-id",
				Spec:       &testSpec{valid: true},
			},
			expErrs: nil,
		},
		"version not set": {
			asset: Asset[*testSpec]{
				Version:    0,
				Identifier: "test-id",
				Spec:       &testSpec{valid: true},
			},
			expErrs: []string{"version must be set"},
		},
		"empty identifier": {
			asset: Asset[*testSpec]{
				Version:    1,
				Identifier: "",
				Spec:       &testSpec{valid: true},
			},
			expErrs: []string{"id must be set"},
		},
		"identifier with spaces": {
			asset: Asset[*testSpec]{
				Version:    1,
				Identifier: "test id",
				Spec:       &testSpec{valid: true},
			},
			expErrs: []string{"id must be alphanumeric"},
		},
		"identifier with underscore": {
			asset: Asset[*testSpec]{
				Version:    1,
				Identifier: "test_id",
				Spec:       &testSpec{valid: true},
			},
			expErrs: []string{"id must be alphanumeric"},
		},
		"identifier with special chars": {
			asset: Asset[*testSpec]{
				Version:    1,
				Identifier: "test@id!",
				Spec:       &testSpec{valid: true},
			},
			expErrs: []string{"id must be alphanumeric"},
		},
		"identifier with hyphen is valid": {
			asset: Asset[*testSpec]{
				Version:    1,
				Identifier: "test-id-123",
				Spec:       &testSpec{valid: true},
			},
			expErrs: nil,
		},
		"invalid spec": {
			asset: Asset[*testSpec]{
				Version:    1,
				Identifier: "test-id",
				Spec:       &testSpec{valid: false},
			},
			expErrs: []string{"spec is invalid"},
		},
		"multiple errors": {
			asset: Asset[*testSpec]{
				Version:    0,
				Identifier: "",
				Spec:       &testSpec{valid: false},
			},
			expErrs: []string{
				"version must be set",
				"id must be set",
				"spec is invalid",
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.asset.Validate()

			if len(tt.expErrs) == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Errorf("expected errors %v, got nil", tt.expErrs)
				return
			}

			errStr := err.Error()
			for _, e := range tt.expErrs {
				if !strings.Contains(errStr, e) {
					t.Errorf("error %q does not contain %q", errStr, e)
				}
			}
		})
	}
}

func TestAsset_Validate_NilSpec(t *testing.T) {
	asset := Asset[*testSpec]{Version: 1, Identifier: "test-id"}
	testutil.AssertErrorContains(t, asset.Validate(), "spec must be set")
}

func TestSmartIdentifier(t *testing.T) {
	store, err := NewMemoryStore(map[string]*testSpec{
		"known": {valid: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]struct {
		raw        string
		expId      string
		expErr     string
		expResolve string
	}{
		"resolves known id": {
			raw:   `"known"`,
			expId: "known",
		},
		"unknown id": {
			raw:        `"missing"`,
			expId:      "missing",
			expResolve: `testSpec "missing" not found`,
		},
		"empty id": {
			raw:    `""`,
			expErr: "testSpec identifier is required",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var id SmartIdentifier[*testSpec]
			if err := json.Unmarshal([]byte(tt.raw), &id); err != nil {
				t.Fatalf("unexpected unmarshal error: %v", err)
			}
			testutil.AssertEqual(t, "id", id.Id(), tt.expId)

			if tt.expErr != "" {
				testutil.AssertErrorContains(t, id.Validate(), tt.expErr)
				return
			}

			err := id.Resolve(store)
			if tt.expResolve != "" {
				testutil.AssertErrorContains(t, err, tt.expResolve)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id.Get() == nil {
				t.Error("expected resolved value")
			}
		})
	}
}

func TestSmartIdentifier_YAMLRoundTrip(t *testing.T) {
	var holder struct {
		Ref SmartIdentifier[*testSpec] `yaml:"ref" json:"ref"`
	}
	if err := yaml.Unmarshal([]byte("ref: town-box\n"), &holder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "id", holder.Ref.Id(), "town-box")

	out, err := json.Marshal(holder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "json", string(out), `{"ref":"town-box"}`)
}
