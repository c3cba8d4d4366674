package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/staff"
	"github.com/trezcool/tuitioncenter/core/subject"
)

var (
	seedStaff = []staff.NewStaff{
		{Username: "admin", FullName: "Director", Role: staff.RoleAdmin, Password: "adminpassword"},
		{Username: "math_teacher", FullName: "Alisher Valiyev", Role: staff.RoleTeacher, Password: "password"},
		{Username: "eng_teacher", FullName: "Vali Aliyev", Role: staff.RoleTeacher, Password: "password"},
	}

	// subject -> teacher username
	seedSubjects = []struct {
		subject.NewSubject
		teacher string
	}{
		{NewSubject: subject.NewSubject{Name: "Matematika", Price: 500000}, teacher: "math_teacher"},
		{NewSubject: subject.NewSubject{Name: "Ingliz Tili", Price: 600000}, teacher: "eng_teacher"},
	}
)

// seed creates whatever default staff and subjects are missing.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	for _, ns := range seedStaff {
		s, err := cli.staffSvc.GetByUsername(ctx, ns.Username)
		switch {
		case err == nil:
			fmt.Printf("staff %q exists (#%d)\n", s.Username, s.ID)
			continue
		case !core.IsNotFound(err):
			return errors.Wrapf(err, "finding staff %q", ns.Username)
		}
		if err = ns.Validate(cli.validate); err != nil {
			return err
		}
		if s, err = cli.staffSvc.Create(ctx, ns); err != nil {
			return errors.Wrapf(err, "creating staff %q", ns.Username)
		}
		fmt.Printf("staff %q created (#%d)\n", s.Username, s.ID)
	}

	for _, seed := range seedSubjects {
		teacher, err := cli.staffSvc.GetByUsername(ctx, seed.teacher)
		if err != nil {
			return errors.Wrapf(err, "finding teacher %q", seed.teacher)
		}
		ns := seed.NewSubject
		ns.TeacherID = &teacher.ID

		s, created, err := cli.subjectSvc.EnsureByName(ctx, ns)
		if err != nil {
			return errors.Wrapf(err, "creating subject %q", ns.Name)
		}
		if created {
			fmt.Printf("subject %q created (#%d)\n", s.Name, s.ID)
		} else {
			fmt.Printf("subject %q exists (#%d)\n", s.Name, s.ID)
		}
	}
	return nil
}
