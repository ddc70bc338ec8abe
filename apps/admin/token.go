package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	echoapi "github.com/trezcool/mtihani/apps/api/echo"
	"github.com/trezcool/mtihani/core"
)

// token prints a signed API token for r. Authentication proper lives outside this service.
func (cli *commandLine) token(r core.Respondent, ttl time.Duration) error {
	token, err := echoapi.GenerateToken(cli.conf, echoapi.NewClaims(cli.conf, r, ttl))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	fmt.Fprintln(cli.out, token)
	return nil
}
