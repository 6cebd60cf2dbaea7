package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/asistente/core/activity"
)

// recalculate recomputes the global percentage of every course and subject owned by the user.
func (cli *commandLine) recalculate(email string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	courses, err := cli.courses.QueryCourses(ctx, usr.ID, nil)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	for _, crs := range courses {
		pct, err := cli.activities.Recalculate(ctx, usr.ID, activity.CourseContainer(crs.ID))
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "course %s (%s): %.2f%%\n", crs.Code, crs.Name, pct)
	}

	subjects, err := cli.courses.QuerySubjects(ctx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	for _, sub := range subjects {
		pct, err := cli.activities.Recalculate(ctx, usr.ID, activity.SubjectContainer(sub.ID))
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "subject %s: %.2f%%\n", sub.Name, pct)
	}
	return nil
}
