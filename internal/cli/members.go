package cli

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/familygraph/pkg/family"
)

// membersCommand creates the members command.
func (c *CLI) membersCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "members",
		Aliases: []string{"ls"},
		Short:   "List family members",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMembers(cmd.Context(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print members as JSON")
	return cmd
}

// sortMembers orders profiles oldest generation first, then by name.
func sortMembers(profiles []family.Profile) []family.Profile {
	out := slices.Clone(profiles)
	slices.SortStableFunc(out, func(a, b family.Profile) int {
		if c := cmp.Compare(family.Role(a.Role).Generation(), family.Role(b.Role).Generation()); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// membersTable renders profiles as a bordered table.
func membersTable(profiles []family.Profile) string {
	rows := make([][]string, len(profiles))
	for i, p := range profiles {
		age := "—"
		if p.Age > 0 {
			age = strconv.Itoa(p.Age)
		}
		status := p.LifeStatus
		if status == "" {
			status = string(family.Living)
		}
		rows[i] = []string{p.Name, p.Role, p.Type, age, status, p.ID}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Role", "Type", "Age", "Status", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			p := profiles[row]
			switch col {
			case 0, 1:
				return roleStyle(family.Role(p.Role)).Padding(0, 1)
			case 4:
				if p.LifeStatus == string(family.Deceased) {
					return cell.Foreground(colorDim).Italic(true)
				}
			case 5:
				return cell.Foreground(colorDim)
			}
			return cell
		}).
		Render()
}

func (c *CLI) runMembers(ctx context.Context, asJSON bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	src, err := c.newSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	snap, err := src.FetchAll(ctx)
	if err != nil {
		return err
	}
	profiles := sortMembers(snap.Profiles)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profiles)
	}

	if len(profiles) == 0 {
		printInfo("No members yet")
		printNextStep("Add yourself", appName+` add "Your Name" --role me`)
		return nil
	}
	fmt.Println(StyleTitle.Render(fmt.Sprintf("%d members", len(profiles))))
	fmt.Println(membersTable(profiles))
	printDetail("%d relationships · source %s", len(snap.Relationships), src.Name())
	return nil
}
