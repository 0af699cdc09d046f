package cli

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/vk/nusig/internal/driver"
	"github.com/vk/nusig/internal/dsl"
	"github.com/vk/nusig/internal/model"
	"github.com/vk/nusig/signature"
)

type modelView struct {
	Name             string      `json:"name"`
	Description      string      `json:"description,omitempty"`
	ExtraDescription string      `json:"extra_description,omitempty"`
	InputOutput      []ioView    `json:"input_output,omitempty"`
	Required         []paramView `json:"required,omitempty"`
	Optional         []paramView `json:"optional,omitempty"`
	Rest             *paramView  `json:"rest,omitempty"`
	Flags            []flagView  `json:"flags,omitempty"`
}

type ioView struct {
	In  string `json:"in"`
	Out string `json:"out"`
}

type paramView struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	Default     string `json:"default,omitempty"`
}

type flagView struct {
	Long        string `json:"long"`
	Short       string `json:"short,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Default     string `json:"default,omitempty"`
}

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [LITERAL]",
		Short: "Print the parsed signature as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := tokenArgs(cmd, args)
			if err != nil {
				return err
			}
			m, err := driver.Model(token)
			if err != nil {
				reportParseError(cmd.ErrOrStderr(), err)
				return failure(err)
			}
			view, err := newModelView(m)
			if err != nil {
				return failure(err)
			}
			out, err := json.MarshalIndent(view, "", "  ")
			if err != nil {
				return failure(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newModelView(m *model.SignatureModel) (*modelView, error) {
	v := &modelView{
		Name:             m.Name,
		Description:      m.Description,
		ExtraDescription: m.ExtraDescription,
	}
	for _, io := range m.InputOutputTypes {
		v.InputOutput = append(v.InputOutput, ioView{In: io.In.String(), Out: io.Out.String()})
	}
	for _, p := range m.RequiredPositional {
		v.Required = append(v.Required, paramView{Name: p.Name, Description: p.Description, Type: p.Type.String()})
	}
	for _, p := range m.OptionalPositional {
		pv := paramView{Name: p.Name, Description: p.Description}
		switch f := p.Form.(type) {
		case model.DeclaredType:
			pv.Type = f.Decl.String()
		case model.DefaultValue:
			def, err := valueText(f.Value)
			if err != nil {
				return nil, fmt.Errorf("default of %s: %w", p.Name, err)
			}
			pv.Type, pv.Default = f.Type().String(), def
		}
		v.Optional = append(v.Optional, pv)
	}
	if r := m.RestPositional; r != nil {
		v.Rest = &paramView{Name: r.Name, Description: r.Description, Type: r.Type.String()}
	}
	for _, f := range m.Named {
		fv := flagView{Long: f.Long, Description: f.Description, Required: f.Required}
		if f.Short != 0 {
			fv.Short = string(f.Short)
		}
		if f.ValueType != nil {
			fv.Type = f.ValueType.String()
		}
		def, err := valueText(f.Default)
		if err != nil {
			return nil, fmt.Errorf("default of --%s: %w", f.Long, err)
		}
		fv.Default = def
		v.Flags = append(v.Flags, fv)
	}
	return v, nil
}

func valueText(v signature.Value) (string, error) {
	if v == nil {
		return "", nil
	}
	return dsl.FormatValue(v)
}
