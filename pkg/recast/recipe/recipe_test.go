package recipe

import (
	"errors"
	"testing"

	"github.com/cognicore/recast/pkg/recast/internalerr"
)

func TestRawRecipeValidate(t *testing.T) {
	tests := []struct {
		name    string
		recipe  RawRecipe
		wantErr bool
	}{
		{
			name:   "valid",
			recipe: RawRecipe{Name: "Soup", Ingredients: []string{"1 onion"}, Instructions: []string{"Chop the onion."}},
		},
		{
			name:    "no ingredients",
			recipe:  RawRecipe{Name: "Soup", Instructions: []string{"Chop the onion."}},
			wantErr: true,
		},
		{
			name:    "no instructions",
			recipe:  RawRecipe{Name: "Soup", Ingredients: []string{"1 onion"}},
			wantErr: true,
		},
		{
			name:    "blank ingredient",
			recipe:  RawRecipe{Name: "Soup", Ingredients: []string{"1 onion", "  "}, Instructions: []string{"Chop."}},
			wantErr: true,
		},
		{
			name:    "blank instruction",
			recipe:  RawRecipe{Name: "Soup", Ingredients: []string{"1 onion"}, Instructions: []string{""}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.recipe.Validate()
			if tt.wantErr {
				if !errors.Is(err, internalerr.ErrInvalidInput) {
					t.Errorf("Validate() = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestNoteString(t *testing.T) {
	n := Note{Kind: internalerr.ErrNoKnownSubstitute, Text: "olive oil"}
	if got := n.String(); got != "no known substitute: olive oil" {
		t.Errorf("String() = %q", got)
	}
	if got := (Note{Text: "plain"}).String(); got != "plain" {
		t.Errorf("String() = %q", got)
	}
}
