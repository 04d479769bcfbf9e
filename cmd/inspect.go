package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/danielpatrickdp/srl-toolkit/internal/distribution"
	"github.com/spf13/cobra"
)

// #region inspect

type variableRow struct {
	Index    int                `json:"index"`
	Name     string             `json:"name"`
	Domain   []string           `json:"domain"`
	Marginal map[string]float64 `json:"marginal,omitempty"`
}

type inspectOutput struct {
	FormatVersion int           `json:"format_version"`
	Z             *float64      `json:"z,omitempty"`
	Rows          int           `json:"rows"`
	Variables     []variableRow `json:"variables"`
}

func newInspectCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the variables, domains and marginals of a distribution file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := distribution.ReadFile(args[0])
			if err != nil {
				return err
			}
			out := describe(d)
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), out)
			}
			return printInspectTable(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of table")
	return cmd
}

func describe(d *distribution.Distribution) inspectOutput {
	out := inspectOutput{
		FormatVersion: distribution.FormatVersion,
		Rows:          len(d.Values()),
		Variables:     make([]variableRow, 0, d.NumVariables()),
	}
	if z, ok := d.Z(); ok {
		out.Z = &z
	}
	for i, name := range d.VariableNames() {
		dom, _ := d.DomainOf(i)
		row := variableRow{Index: i, Name: name, Domain: dom}
		// rows that do not line up with the domain have no marginal
		if m, err := d.Marginal(name); err == nil {
			row.Marginal = m
		}
		out.Variables = append(out.Variables, row)
	}
	return out
}

func printInspectTable(w io.Writer, out inspectOutput) error {
	z := "none"
	if out.Z != nil {
		z = fmt.Sprintf("%g", *out.Z)
	}
	fmt.Fprintf(w, "Variables: %d | Rows: %d | Z: %s\n\n", len(out.Variables), out.Rows, z)
	fmt.Fprintf(w, "%-5s  %-24s  %s\n", "Index", "Variable", "Domain")
	fmt.Fprintf(w, "%-5s+-%-24s+-%s\n", "-----", "------------------------", "--------------------")
	for _, v := range out.Variables {
		labels := make([]string, len(v.Domain))
		for i, label := range v.Domain {
			if p, ok := v.Marginal[label]; ok {
				labels[i] = fmt.Sprintf("%s=%.4f", label, p)
			} else {
				labels[i] = label
			}
		}
		fmt.Fprintf(w, "%-5d  %-24s  %s\n", v.Index, v.Name, strings.Join(labels, " "))
	}
	return nil
}

// #endregion inspect

// #region output

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// #endregion output
