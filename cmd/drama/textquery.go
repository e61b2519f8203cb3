package main

import (
	"github.com/spf13/cobra"

	"github.com/ersonp/drama-core/internal/domain/entities"
	"github.com/ersonp/drama-core/internal/domain/services"
)

// textFlags binds a text selection to command flags.
type textFlags struct {
	textType string
	gender   string
	relation string
}

// register adds the flags under the given prefix, e.g. "text" gives
// --text, --text-gender and --text-relation.
func (f *textFlags) register(cmd *cobra.Command, prefix, defaultType string) {
	cmd.Flags().StringVar(&f.textType, prefix, defaultType,
		"Text selection (all, all_spoken, all_stage, by_gender, by_relation)")
	cmd.Flags().StringVar(&f.gender, prefix+"-gender", "", "Gender for by_gender (male, female, unknown)")
	cmd.Flags().StringVar(&f.relation, prefix+"-relation", "", "Relation kind for by_relation")
}

func (f *textFlags) query() (entities.TextQuery, error) {
	t, err := services.ParseTextType(f.textType)
	if err != nil {
		return entities.TextQuery{}, err
	}
	return entities.TextQuery{
		Type:     t,
		Gender:   entities.ParseGender(f.gender),
		Relation: entities.RelationKind(f.relation),
	}, nil
}
