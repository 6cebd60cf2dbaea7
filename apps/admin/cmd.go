package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/asistente/core/activity"
	"github.com/trezcool/asistente/core/course"
	"github.com/trezcool/asistente/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sql.DB
	usrSvc     user.Service
	courses    course.Repository
	activities activity.Service
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL - reset user's password")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...]  - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  recalculate -email EMAIL   - recompute the global percentage of every course and subject of a user")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	recalculateCmd := flag.NewFlagSet("recalculate", flag.ContinueOnError)
	recalculateEmail := recalculateCmd.String("email", "", "The user's email.")

	switch args[1] {
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, string(pwd))
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "recalculate":
		if err := recalculateCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *recalculateEmail == "" {
			recalculateCmd.Usage()
			return errHelp
		}
		return cli.recalculate(*recalculateEmail)
	default:
		cli.printUsage()
		return errHelp
	}
}
