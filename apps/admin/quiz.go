package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/analytics"
)

func (cli *commandLine) auditSubjects(quizID string) error {
	suspects, err := cli.quizSvc.AuditSubjects(context.Background(), quizID)
	if err != nil {
		return err
	}
	if len(suspects) == 0 {
		fmt.Fprintln(cli.out, "no suspect subjects")
		return nil
	}
	for _, s := range suspects {
		fmt.Fprintf(cli.out, "%q ~ %q (%.2f): %s\n", s.Subject, s.Other, s.Ratio, s.Reason)
	}
	return nil
}

func (cli *commandLine) clearCompletion(respondentID, quizID string) error {
	if err := cli.attemptSvc.ClearCompletion(context.Background(), respondentID, quizID); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "completion of quiz %s cleared for %s\n", quizID, respondentID)
	return nil
}

// result prints a table on a terminal, JSON otherwise.
func (cli *commandLine) result(respondentID, quizID string, tty bool) error {
	sum, err := cli.analyticsSvc.Result(context.Background(), core.Respondent{ID: respondentID}, quizID)
	if err != nil {
		return err
	}
	if !tty {
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(sum), "encoding result")
	}
	return printSummary(cli, sum)
}

func printSummary(cli *commandLine, sum analytics.Summary) error {
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	row := func(label string, s core.Score) {
		fmt.Fprintf(w, "%s\t%d/%d\t%d%%\n", label, s.Correct, s.Total, s.Percentage)
	}

	row("Overall", sum.Overall)
	fmt.Fprintln(w, "\t\t")
	for _, b := range sum.Difficulty {
		row(b.Difficulty, b.Score)
	}
	fmt.Fprintln(w, "\t\t")
	for _, b := range sum.Subjects {
		row(b.Subject, b.Score)
	}
	fmt.Fprintln(w, "\t\t")
	for _, q := range sum.Questions {
		mark := "x"
		if q.Correct {
			mark = "ok"
		}
		fmt.Fprintf(w, "Q%d\t%s -> %s\t%s\n", q.Numero, q.Chosen, q.Answer, mark)
	}
	return w.Flush()
}
