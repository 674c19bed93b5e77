package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-adaptive/internal/auth"
)

var addUserCmd = &cobra.Command{
	Use:   "add-user",
	Short: "Create a student or teacher account",
	Example: `  adaptived add-user --role student --name "Aminata K" --email aminata@example.com --password s3cretpass --grade 9
  adaptived add-user --role teacher --name "Mr Conteh" --email conteh@example.com --password s3cretpass --subjects mathematics,science`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		role, _ := f.GetString("role")
		name, _ := f.GetString("name")
		email, _ := f.GetString("email")
		password, _ := f.GetString("password")

		cfg := loadConfig(cmd)
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		switch auth.Kind(role) {
		case auth.KindStudent:
			grade, _ := f.GetInt("grade")
			st, err := a.accounts.RegisterStudent(ctx, auth.StudentSignup{Name: name, Email: email, Password: password, Grade: grade})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created student %s (%s)\n", st.ID, st.Email)
		case auth.KindTeacher:
			subjects, _ := f.GetStringSlice("subjects")
			t, err := a.accounts.RegisterTeacher(ctx, auth.TeacherSignup{Name: name, Email: email, Password: password, Subjects: subjects})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created teacher %s (%s)\n", t.ID, t.Email)
		default:
			return fmt.Errorf("--role must be student or teacher, got %q", role)
		}
		return nil
	},
}

func init() {
	f := addUserCmd.Flags()
	f.String("role", "student", "student|teacher")
	f.String("name", "", "Display name")
	f.String("email", "", "Login email")
	f.String("password", "", "Password (at least 8 characters)")
	f.Int("grade", 0, "Grade 7-12 (students)")
	f.StringSlice("subjects", nil, "Subjects taught (teachers)")
	_ = addUserCmd.MarkFlagRequired("name")
	_ = addUserCmd.MarkFlagRequired("email")
	_ = addUserCmd.MarkFlagRequired("password")
}
