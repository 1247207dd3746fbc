package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"valgate/internal/core"
	"valgate/internal/core/apierrors"
	"valgate/internal/core/engine"
	"valgate/internal/core/preprocessing"
)

var (
	checkProfile string
	checkGroups  string
)

// errRejected makes the process exit non-zero after the errors were printed
var errRejected = errors.New("request rejected")

var checkCmd = &cobra.Command{
	Use:   "check <file|->",
	Short: "Run a JSON document through a validation profile",
	Long: `Run a JSON document through a validation profile and print the processed
document, or the validation errors when a step rejects it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer rt.log.Sync()

		body, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}

		return checkDocument(cmd.OutOrStdout(), rt.engine, rt.log, body,
			checkProfile, preprocessing.ParseGroups(checkGroups))
	},
}

// checkDocument runs body through the chosen profile and prints the outcome to out.
// A rejection returns errRejected, a fault returns the step's error wrapped with its index.
func checkDocument(out io.Writer, e *engine.Engine, log *zap.Logger, body []byte, profileID string, groups []preprocessing.Group) error {
	profile, err := pickProfile(e, profileID, body)
	if err != nil {
		return err
	}
	chain, _ := e.Chain(profile.ID)

	req := core.NewRequest(body, log)
	res := chain.Run(req, profile.ValidationConfig(groups))

	switch res.Outcome {
	case preprocessing.Succeeded:
		_, err = fmt.Fprintln(out, string(req.Body))
		return err
	case preprocessing.Rejected:
		data, err := apierrors.Marshal(req.Errors)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return errRejected
	default:
		return fmt.Errorf("preprocessing failed at step %d: %w", res.Step, res.Cause)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkProfile, "profile", "", "profile id (default: first matching profile)")
	checkCmd.Flags().StringVar(&checkGroups, "groups", "", "comma separated validation groups")
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func pickProfile(e *engine.Engine, id string, body []byte) (*engine.Profile, error) {
	if id != "" {
		p, ok := e.Profile(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", engine.ErrProfileNotFound, id)
		}
		return p, nil
	}
	return e.FindProfile(body)
}
