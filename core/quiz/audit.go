package quiz

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
)

// subjects at or above this similarity ratio are reported
const subjectMaxSim = .8

// SubjectSuspect is a pair of distinct subject tags that probably name the same subject.
type SubjectSuspect struct {
	Subject string  `json:"subject"`
	Other   string  `json:"other"`
	Ratio   float64 `json:"ratio"`
	Reason  string  `json:"reason"`
}

// AuditSubjects reports the subject tags of a quiz that would split one subject over several analytics buckets.
// Tags are never rewritten.
func (svc *Service) AuditSubjects(ctx context.Context, quizID string) ([]SubjectSuspect, error) {
	questions, err := svc.Questions(ctx, quizID)
	if err != nil {
		return nil, errors.Wrap(err, "getting questions")
	}
	subjects := make([]string, 0, len(questions))
	for _, q := range questions {
		subjects = append(subjects, q.Subject)
	}
	return SuspectSubjects(subjects), nil
}

func foldSubject(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// SuspectSubjects compares every pair of distinct tags, in order of first appearance.
func SuspectSubjects(subjects []string) []SubjectSuspect {
	distinct := make([]string, 0, len(subjects))
	seen := make(map[string]struct{}, len(subjects))
	for _, s := range subjects {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			distinct = append(distinct, s)
		}
	}

	suspects := make([]SubjectSuspect, 0)
	for i := 0; i < len(distinct); i++ {
		for j := i + 1; j < len(distinct); j++ {
			a, b := foldSubject(distinct[i]), foldSubject(distinct[j])
			if a == b {
				suspects = append(suspects, SubjectSuspect{
					Subject: distinct[i], Other: distinct[j], Ratio: 1, Reason: "differ only by case or whitespace",
				})
				continue
			}
			ratio := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
			if ratio >= subjectMaxSim {
				suspects = append(suspects, SubjectSuspect{
					Subject: distinct[i], Other: distinct[j], Ratio: ratio, Reason: "similar spelling",
				})
			}
		}
	}
	return suspects
}
