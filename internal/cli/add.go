package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/source"
)

// addFlags holds the command-line flags for the add command.
type addFlags struct {
	role     string
	age      int
	pet      bool
	deceased bool
	photo    string
	to       string // existing member, by id or name
	as       string // hint type relative to --to
}

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	var flags addFlags

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a family member",
		Long: `Add a member to the data source. With --to and --as the new member is also
linked to an existing one:

  familygraph add "Zoe Lee" --role child --to me --as child
  familygraph add "Rex" --pet --to "Ann Lee" --as pet
  familygraph add "Oma" --role grandparent --deceased --to me --as grandparent`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAdd(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.role, "role", "", "role: me, spouse, parent, grandparent, great_grandparent, child, sibling, pet")
	cmd.Flags().IntVar(&flags.age, "age", 0, "age in years")
	cmd.Flags().BoolVar(&flags.pet, "pet", false, "add a pet instead of a person")
	cmd.Flags().BoolVar(&flags.deceased, "deceased", false, "mark the member as deceased")
	cmd.Flags().StringVar(&flags.photo, "photo", "", "photo URL (default: generated avatar)")
	cmd.Flags().StringVar(&flags.to, "to", "", "existing member to relate to (id or name)")
	cmd.Flags().StringVar(&flags.as, "as", "", "relation of the new member to --to: spouse, child, parent, sibling, pet, grandparent")

	return cmd
}

// buildProfile turns the add flags into an unsaved profile.
func buildProfile(name string, flags addFlags) family.Profile {
	p := family.Profile{
		Name:     strings.TrimSpace(name),
		Age:      flags.age,
		Role:     strings.ToLower(flags.role),
		PhotoURL: flags.photo,
	}
	if flags.pet {
		p.Type = string(family.TypePet)
		if p.Role == "" {
			p.Role = string(family.RolePet)
		}
	}
	if flags.deceased {
		p.LifeStatus = string(family.Deceased)
	}
	return p
}

// resolveMember finds a profile by exact id, then by case-insensitive name.
func resolveMember(profiles []family.Profile, ref string) (family.Profile, error) {
	for _, p := range profiles {
		if p.ID == ref {
			return p, nil
		}
	}
	var found []family.Profile
	for _, p := range profiles {
		if strings.EqualFold(p.Name, ref) {
			found = append(found, p)
		}
	}
	switch len(found) {
	case 0:
		return family.Profile{}, errors.New(errors.ErrCodeNotFound, "no member with id or name %q", ref)
	case 1:
		return found[0], nil
	}
	return family.Profile{}, errors.New(errors.ErrCodeInvalidInput, "%d members are named %q, use the id instead", len(found), ref)
}

func (c *CLI) runAdd(ctx context.Context, name string, flags addFlags) error {
	logger := loggerFromContext(ctx)

	if (flags.to == "") != (flags.as == "") {
		return errors.New(errors.ErrCodeInvalidInput, "--to and --as must be given together")
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	src, err := c.newSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	var hint *source.Hint
	var target family.Profile
	if flags.to != "" {
		snap, err := src.FetchAll(ctx)
		if err != nil {
			return err
		}
		if target, err = resolveMember(snap.Profiles, flags.to); err != nil {
			return err
		}
		hint = &source.Hint{TargetID: target.ID, Type: source.HintType(strings.ToLower(flags.as))}
		if !hint.Known() {
			printWarning("Unknown relation %q, linking as parent of %s", flags.as, target.Name)
		}
	}

	p, err := src.AddProfile(ctx, buildProfile(name, flags), hint)
	if err != nil {
		printError("Could not add %s", name)
		return err
	}
	logger.Debug("added profile", "id", p.ID, "source", src.Name())

	printSuccess("Added %s", roleStyle(family.Role(p.Role)).Render(p.Name))
	printKeyValue("ID", p.ID)
	printKeyValue("Role", p.Role)
	if hint != nil {
		printKeyValue("Related", string(hint.Type)+" of "+target.Name)
	}
	printNextStep("Render the updated tree", appName+" render")
	return nil
}
