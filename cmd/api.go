package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/bbx/internal/services"
	"github.com/desertthunder/bbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the backend
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.client.Get(ctx, path)
	if err != nil {
		return err
	}
	return r.writeResponse(resp, cmd.Bool("pretty"))
}

// APIPost makes a direct POST request to the backend. With --field or --file the body is sent
// as multipart form data instead of JSON.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}

	data := cmd.String("data")
	fields, err := parsePairs(cmd.StringSlice("field"))
	if err != nil {
		return err
	}
	files, err := parsePairs(cmd.StringSlice("file"))
	if err != nil {
		return err
	}

	multipart := len(fields) > 0 || len(files) > 0
	switch {
	case data == "" && !multipart:
		return fmt.Errorf("%w: --data or --field/--file is required", shared.ErrMissingArgument)
	case data != "" && multipart:
		return fmt.Errorf("%w: cannot combine --data with --field/--file", shared.ErrInvalidArgument)
	}

	r.logger.Info("POST request", "path", path, "multipart", multipart)

	var resp *services.APIResponse
	if multipart {
		resp, err = r.client.PostForm(ctx, path, fields, files)
	} else {
		resp, err = r.client.PostJSON(ctx, path, []byte(data))
	}
	if err != nil {
		return err
	}
	return r.writeResponse(resp, true)
}

func (r *Runner) writeResponse(resp *services.APIResponse, pretty bool) error {
	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}
	if _, err := r.output.Write(resp.Body); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return r.writePlain("\n")
}

// parsePairs splits name=value arguments.
func parsePairs(raw []string) (map[string]string, error) {
	pairs := map[string]string{}
	for _, item := range raw {
		name, value, ok := strings.Cut(item, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: expected name=value, got %q", shared.ErrInvalidArgument, item)
		}
		pairs[strings.TrimSpace(name)] = value
	}
	return pairs, nil
}
