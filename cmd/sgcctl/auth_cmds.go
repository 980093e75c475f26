package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/resource"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/service"
	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
)

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := cli.flags("login")
	email := fs.String("email", "", "Account email. The password is prompted next.")
	institution := fs.String("institution", "", "Super admin only: id or code of the institution to work in.")
	fromStdin := fs.Bool("password-stdin", false, "Read the password from the first line of stdin.")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if *email == "" {
		fs.Usage()
		return errHelp
	}

	password, err := cli.promptPassword(*fromStdin)
	if err != nil {
		return err
	}

	console, err := cli.open(ctx)
	if err != nil {
		return err
	}
	res, err := console.Auth.Login(ctx, models.LoginRequest{Email: strings.TrimSpace(*email), Password: password})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Signed in as %s (%s)\n", res.User.Name, res.User.Role)

	if !res.NeedsInstitution {
		return nil
	}
	chosen, err := cli.chooseInstitution(res.Institutions, *institution)
	if err != nil {
		return err
	}
	if err := console.Auth.SelectInstitution(ctx, chosen); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Working in %s\n", chosen.Name)
	return nil
}

func (cli *commandLine) promptPassword(fromStdin bool) (string, error) {
	if fromStdin {
		line, err := cli.in.ReadString('\n')
		if err != nil && line == "" {
			return "", appErrors.Local("no password on stdin", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprint(cli.out, "Password: ")
	pwd, err := cli.readPassword(stdinFD())
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// chooseInstitution matches want against ids and codes, or asks.
func (cli *commandLine) chooseInstitution(institutions []models.Institution, want string) (models.Institution, error) {
	if want != "" {
		for _, inst := range institutions {
			if inst.ID == want || strings.EqualFold(inst.Code, want) {
				return inst, nil
			}
		}
		return models.Institution{}, appErrors.Local(fmt.Sprintf("institution %q is not available", want), nil)
	}

	fmt.Fprintln(cli.out, "Select an institution:")
	for i, inst := range institutions {
		fmt.Fprintf(cli.out, "  %d) %s [%s]\n", i+1, inst.Name, inst.Code)
	}
	fmt.Fprintf(cli.out, "Choice [1-%d]: ", len(institutions))
	line, _ := cli.in.ReadString('\n')
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > len(institutions) {
		return models.Institution{}, appErrors.Local("no institution selected", err)
	}
	return institutions[n-1], nil
}

func (cli *commandLine) use(ctx context.Context, args []string) error {
	fs := cli.flags("use")
	id := fs.String("institution", "", "Institution id.")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		fs.Usage()
		return errHelp
	}
	console, err := cli.authed(ctx)
	if err != nil {
		return err
	}
	if console.Session.InstitutionScope().Locked {
		return appErrors.ErrInstitutionScopeLocked
	}
	var inst models.Institution
	if err := console.Records.Get(ctx, resource.Institutions, *id, &inst); err != nil {
		return err
	}
	if err := console.Auth.SelectInstitution(ctx, inst); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Working in %s\n", inst.Name)
	return nil
}

func (cli *commandLine) logout(ctx context.Context, args []string) error {
	console, err := cli.open(ctx)
	if err != nil {
		return err
	}
	if err := console.Auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Signed out")
	return nil
}

func (cli *commandLine) whoami(ctx context.Context, args []string) error {
	fs := cli.flags("whoami")
	asJSON := fs.Bool("json", false, "Print JSON.")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	console, err := cli.open(ctx)
	if err != nil {
		return err
	}
	id := console.Auth.WhoAmI()
	if *asJSON {
		return cli.printJSON(id)
	}
	return cli.printIdentity(id)
}

func (cli *commandLine) printIdentity(id service.Identity) error {
	if !id.Authenticated {
		fmt.Fprintln(cli.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(cli.out, "%s <%s>\nrole: %s\n", id.Name, id.Email, id.Role)
	switch {
	case id.Institution == "":
		fmt.Fprintln(cli.out, "institution: all")
	case id.Locked:
		fmt.Fprintf(cli.out, "institution: %s (locked)\n", id.Institution)
	default:
		fmt.Fprintf(cli.out, "institution: %s\n", id.Institution)
	}
	if id.ExpiresAt != nil {
		fmt.Fprintf(cli.out, "expires: %s\n", id.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
