package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/skillbridge-dev/skillbridge/internal/api"
)

// NewRegisterCmd creates the register command and its per-role subcommands
func NewRegisterCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a SkillBridge account",
	}
	cmd.AddCommand(newRegisterStudentCmd(app))
	cmd.AddCommand(newRegisterTrainerCmd(app))
	cmd.AddCommand(newRegisterAdminCmd(app))
	return cmd
}

func newRegisterStudentCmd(app *App) *cobra.Command {
	var req api.StudentRegistrationRequest

	cmd := &cobra.Command{
		Use:   "student",
		Short: "Register as a student of an existing college",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			if req.Password, err = resolvePassword(req.Password, cmd.OutOrStdout()); err != nil {
				return err
			}
			return runRegister(cmd.Context(), env, cmd.OutOrStdout(), "student", &req)
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().StringVar(&req.CollegeID, "college-id", "", "College ID (see 'skillbridge colleges ls')")
	cmd.Flags().StringVar(&req.RegisterNumber, "register-number", "", "College register number")
	cmd.Flags().IntVar(&req.Year, "year", 0, "Year of study")
	cmd.Flags().StringVar(&req.Department, "department", "", "Department")
	cmd.Flags().StringVar(&req.PhoneNumber, "phone", "", "Phone number")
	return cmd
}

func newRegisterTrainerCmd(app *App) *cobra.Command {
	var req api.TrainerRegistrationRequest

	cmd := &cobra.Command{
		Use:   "trainer",
		Short: "Register as a trainer of an existing college",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			if req.Password, err = resolvePassword(req.Password, cmd.OutOrStdout()); err != nil {
				return err
			}
			return runRegister(cmd.Context(), env, cmd.OutOrStdout(), "trainer", &req)
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().StringVar(&req.CollegeID, "college-id", "", "College ID (see 'skillbridge colleges ls')")
	cmd.Flags().StringVar(&req.TeacherID, "teacher-id", "", "Staff ID issued by the college")
	cmd.Flags().StringVar(&req.Department, "department", "", "Department")
	cmd.Flags().StringVar(&req.PhoneNumber, "phone", "", "Phone number")
	cmd.Flags().StringVar(&req.Specialization, "specialization", "", "Area of expertise")
	cmd.Flags().StringVar(&req.Bio, "bio", "", "Short bio")
	return cmd
}

func newRegisterAdminCmd(app *App) *cobra.Command {
	var req api.AdminRegistrationRequest

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Register a college together with its first admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			if req.Password, err = resolvePassword(req.Password, cmd.OutOrStdout()); err != nil {
				return err
			}
			return runRegister(cmd.Context(), env, cmd.OutOrStdout(), "admin", &req)
		},
	}

	cmd.Flags().StringVar(&req.AdminName, "name", "", "Admin full name")
	cmd.Flags().StringVar(&req.AdminEmail, "email", "", "Admin email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().StringVar(&req.PhoneNumber, "phone", "", "Admin phone number")
	cmd.Flags().StringVar(&req.RoleTitle, "role-title", "", "Admin title, e.g. Placement Officer")
	cmd.Flags().StringVar(&req.CollegeName, "college-name", "", "College name")
	cmd.Flags().StringVar(&req.CollegeDomain, "college-domain", "", "College email domain")
	cmd.Flags().StringVar(&req.CollegeWebsite, "college-website", "", "College website URL")
	cmd.Flags().StringVar(&req.CollegeContactEmail, "college-contact-email", "", "College contact email")
	cmd.Flags().StringVar(&req.CollegeContactPhone, "college-contact-phone", "", "College contact phone")
	cmd.Flags().StringVar(&req.CollegeAddress, "college-address", "", "College address")
	return cmd
}

func runRegister(ctx context.Context, env *Env, out io.Writer, kind string, payload any) error {
	fmt.Fprintf(out, "Registering %s account on %s (%s)...\n", kind, env.Server.Alias, env.Server.URL)

	result := env.Resolver.Register(ctx, kind, payload)
	if !result.Success {
		return fmt.Errorf("registration failed: %s", result.Message)
	}

	fmt.Fprintln(out, "✓ Registration successful! You are now logged in.")
	printProfile(out, result.User)
	return nil
}
