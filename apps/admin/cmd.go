package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kat-co/vala"
	"golang.org/x/term"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/analytics"
	"github.com/trezcool/mtihani/core/attempt"
	"github.com/trezcool/mtihani/core/quiz"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db           *sql.DB
	conf         *core.Config
	quizSvc      *quiz.Service
	attemptSvc   *attempt.Service
	analyticsSvc *analytics.Service
	out          io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, create NAME sql...)")
	fmt.Fprintln(cli.out, "  token -sub ID -username NAME [-email EMAIL] [-roles ROLE,ROLE] [-ttl 24h] - mint an API token")
	fmt.Fprintln(cli.out, "  audit-subjects -quiz ID - list subject tags that look like duplicates")
	fmt.Fprintln(cli.out, "  clear-completion -quiz ID -respondent ID - let a respondent redo a quiz")
	fmt.Fprintln(cli.out, "  result -quiz ID -respondent ID - print a respondent's result")
}

// check prints the failed preconditions and the flag set usage.
func (cli *commandLine) check(fset *flag.FlagSet, checks ...vala.Checker) error {
	if err := vala.BeginValidation().Validate(checks...).Check(); err != nil {
		fmt.Fprintln(cli.out, err)
		fset.SetOutput(cli.out)
		fset.Usage()
		return errHelp
	}
	return nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	tokenSub := tokenCmd.String("sub", "", "The respondent ID.")
	tokenUname := tokenCmd.String("username", "", "The respondent's username.")
	tokenEmail := tokenCmd.String("email", "", "The respondent's email.")
	tokenRoles := tokenCmd.String("roles", core.RoleStudent, "Comma separated roles, e.g. teacher:,admin:")
	tokenTTL := tokenCmd.Duration("ttl", 0, "Token lifetime. Defaults to the server's JWT expiration delta.")

	auditCmd := flag.NewFlagSet("audit-subjects", flag.ExitOnError)
	auditQuiz := auditCmd.String("quiz", "", "The quiz ID.")

	clearCmd := flag.NewFlagSet("clear-completion", flag.ExitOnError)
	clearQuiz := clearCmd.String("quiz", "", "The quiz ID.")
	clearResp := clearCmd.String("respondent", "", "The respondent ID.")

	resultCmd := flag.NewFlagSet("result", flag.ExitOnError)
	resultQuiz := resultCmd.String("quiz", "", "The quiz ID.")
	resultResp := resultCmd.String("respondent", "", "The respondent ID.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		err := cli.check(tokenCmd,
			vala.StringNotEmpty(*tokenSub, "sub"),
			vala.StringNotEmpty(*tokenUname, "username"),
			vala.GreaterThan(int(*tokenTTL), -1, "ttl"),
		)
		if err != nil {
			return err
		}
		r := core.Respondent{
			ID:       *tokenSub,
			Username: *tokenUname,
			Email:    *tokenEmail,
			Roles:    splitRoles(*tokenRoles),
		}
		return cli.token(r, *tokenTTL)

	case "audit-subjects":
		if err := auditCmd.Parse(args[2:]); err != nil {
			return err
		}
		if err := cli.check(auditCmd, vala.StringNotEmpty(*auditQuiz, "quiz")); err != nil {
			return err
		}
		return cli.auditSubjects(*auditQuiz)

	case "clear-completion":
		if err := clearCmd.Parse(args[2:]); err != nil {
			return err
		}
		err := cli.check(clearCmd,
			vala.StringNotEmpty(*clearQuiz, "quiz"),
			vala.StringNotEmpty(*clearResp, "respondent"),
		)
		if err != nil {
			return err
		}
		return cli.clearCompletion(*clearResp, *clearQuiz)

	case "result":
		if err := resultCmd.Parse(args[2:]); err != nil {
			return err
		}
		err := cli.check(resultCmd,
			vala.StringNotEmpty(*resultQuiz, "quiz"),
			vala.StringNotEmpty(*resultResp, "respondent"),
		)
		if err != nil {
			return err
		}
		return cli.result(*resultResp, *resultQuiz, isTerminalFunc(int(os.Stdout.Fd())))

	default:
		cli.printUsage()
		return errHelp
	}
}

func splitRoles(s string) []string {
	var roles []string
	for _, role := range strings.Split(s, ",") {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}
