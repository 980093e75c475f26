package main

import (
	"context"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/cascade"
)

// options prints what each dependent selector offers for a partial
// selection, the same lists promote and result forms are checked against.
func (cli *commandLine) options(ctx context.Context, args []string) error {
	fs := cli.flags("options")
	var target cascade.Selection
	fs.StringVar(&target.Institution, "institution", "", "Institution id. Defaults to the session institution.")
	fs.StringVar(&target.Department, "department", "", "Department id.")
	fs.StringVar(&target.Group, "group", "", "Group id.")
	fs.StringVar(&target.Class, "class", "", "Class id.")
	fs.StringVar(&target.Section, "section", "", "Section id.")
	asJSON := fs.Bool("json", false, "Print JSON.")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	console, err := cli.authed(ctx)
	if err != nil {
		return err
	}
	sel, err := console.Placement(ctx, target)
	if err != nil {
		return err
	}

	levels := []cascade.Level{
		cascade.LevelInstitution,
		cascade.LevelDepartment,
		cascade.LevelGroup,
		cascade.LevelClass,
		cascade.LevelSection,
		cascade.LevelStudent,
	}
	current := sel.Selection()
	if *asJSON {
		out := map[string]interface{}{"selection": current, "state": sel.State()}
		for _, level := range levels {
			out[level.String()] = sel.Options(level)
		}
		return cli.printJSON(out)
	}

	var rows [][]string
	for _, level := range levels {
		for _, o := range sel.Options(level) {
			mark := ""
			if current.Get(level) == o.ID {
				mark = "*"
			}
			rows = append(rows, []string{level.String(), o.ID, o.Label, mark})
		}
	}
	return cli.table([]string{"LEVEL", "ID", "LABEL", "SELECTED"}, rows)
}
