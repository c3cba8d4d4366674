package main

import (
	"context"

	"github.com/trezcool/tuitioncenter/core"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	s, err := cli.staffSvc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	pr := core.PasswordReset{NewPassword: pwd, Username: s.Username}
	if err = pr.Validate(cli.validate); err != nil {
		return err
	}
	return cli.staffSvc.ResetPassword(ctx, s.Username, pwd)
}
