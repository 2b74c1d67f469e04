package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/stateforge/stateforge/pkg/cmd"
	"github.com/stateforge/stateforge/pkg/validation"
	"github.com/stateforge/stateforge/pkg/wire"
)

var errDefinitionInvalid = fmt.Errorf("definition is invalid")

// runValidate checks a wire-format definition file the same way the
// import endpoint does: document schema first, then the structural
// pass, then, when a directory snapshot is given, the data pass.
func runValidate(ctx context.Context, command *cli.Command) error {
	data, err := os.ReadFile(command.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read definition file: %w", err)
	}

	violations, err := wire.ValidateDocument(data)
	if err != nil {
		return fmt.Errorf("failed to parse definition: %w", err)
	}

	if len(violations) > 0 {
		for _, v := range violations {
			fmt.Fprintln(os.Stderr, "schema:", v)
		}

		return errDefinitionInvalid
	}

	var doc wire.Workflow
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse definition: %w", err)
	}

	def := doc.Decode()
	result := validation.ValidateStructure(def)

	if path := command.String("directory-snapshot"); path != "" {
		dir, err := cmd.NewDirectorySnapshot(path)
		if err != nil {
			return err
		}

		_, dataResult, err := validation.NewDataValidator(dir).ValidateData(ctx, def)
		if err != nil {
			return fmt.Errorf("data validation failed: %w", err)
		}

		result.Merge(dataResult)
	}

	if result.HasErrors() {
		for _, issue := range result.Issues() {
			if issue.Info != "" {
				fmt.Fprintf(os.Stderr, "%s: %s\n", issue.Code, issue.Info)
			} else {
				fmt.Fprintln(os.Stderr, issue.Code)
			}
		}

		return errDefinitionInvalid
	}

	fmt.Printf("%s: ok (%d states, %d transitions)\n", def.Name, len(def.States), len(def.Transitions))

	return nil
}
