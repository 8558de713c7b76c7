package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/studiowebux/mimic/internal/config"
	"github.com/studiowebux/mimic/internal/executor"
	"github.com/studiowebux/mimic/internal/filter"
	"github.com/studiowebux/mimic/internal/history"
	"github.com/studiowebux/mimic/internal/types"
)

const (
	// CommandRequest is the generic executor
	CommandRequest = "request"
	// CommandConnect is the fixed-endpoint executor
	CommandConnect = "connect"
)

// RunOptions contains options for one invocation
type RunOptions struct {
	Command string   // request or connect
	Args    []string // positional inputs
	Preset  string   // preset name for connect
	Query   string   // JMESPath expression applied to the json body
	History bool     // record the invocation even if the config does not
	Config  *config.Config
	Out     io.Writer
	Logger  *slog.Logger

	// ClientFactory replaces tls-client, used by tests
	ClientFactory executor.ClientFactory
}

// Run executes one invocation and writes exactly one JSON line to opts.Out.
// HTTP-level failures are reported inside that line; the returned error is
// only set when the line itself cannot be written.
func Run(ctx context.Context, opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	inv := &types.Invocation{
		ID:      uuid.NewString(),
		Command: opts.Command,
		Profile: opts.Config.Profile.Name,
		Started: time.Now(),
	}
	logger = logger.With("invocation", inv.ID, "command", opts.Command)

	spec, detector, err := buildSpec(opts)
	if err != nil {
		var argErr *ArgumentError
		if !errors.As(err, &argErr) {
			argErr = &ArgumentError{Detail: err.Error()}
		}
		logger.Warn("invalid arguments", "error", argErr.Detail)
		inv.Result = types.InvalidArgs(argErr.Detail)
	} else {
		inv.Spec = spec
		execOpts := []executor.Option{
			executor.WithBlockDetector(detector),
			executor.WithLogger(logger),
		}
		if opts.ClientFactory != nil {
			execOpts = append(execOpts, executor.WithClientFactory(opts.ClientFactory))
		}
		inv.Result = executor.New(opts.Config.Profile, execOpts...).Execute(ctx, spec)
	}
	inv.Duration = time.Since(inv.Started)

	if opts.Query != "" && inv.Result.Kind == types.KindOK {
		applyQuery(inv.Result, opts.Query)
	}

	if opts.History || opts.Config.History.Enabled {
		record(logger, opts.Config.History.Path, inv)
	}

	return writeResult(opts.Out, inv.Result)
}

func buildSpec(opts RunOptions) (*types.RequestSpec, executor.BlockDetector, error) {
	switch opts.Command {
	case CommandRequest:
		spec, err := ParseRequestArgs(opts.Args)
		return spec, executor.APIBlock, err
	case CommandConnect:
		name := opts.Preset
		if name == "" {
			name = config.DefaultPreset
		}
		preset, err := opts.Config.Preset(name)
		if err != nil {
			return nil, executor.BlockDetector{}, &ArgumentError{Detail: err.Error()}
		}
		spec, err := ParsePresetArgs(preset, opts.Args)
		if err != nil {
			return nil, executor.BlockDetector{}, err
		}
		return spec, executor.BlockDetector{Sentinel: preset.Sentinel, Markers: preset.Markers}, nil
	default:
		return nil, executor.BlockDetector{}, fmt.Errorf("unknown command %q", opts.Command)
	}
}

func applyQuery(result *types.Result, expression string) {
	result.HasQuery = true
	if result.JSON == nil {
		result.QueryError = "response body is not JSON"
		return
	}
	out, err := filter.Query(result.JSON, expression)
	if err != nil {
		result.QueryError = err.Error()
		return
	}
	result.Query = out
}

// record saves the invocation; failures never reach stdout
func record(logger *slog.Logger, path string, inv *types.Invocation) {
	mgr, err := history.NewManager(path)
	if err != nil {
		logger.Warn("failed to open history", "path", path, "error", err)
		return
	}
	defer mgr.Close()

	if err := mgr.Save(inv); err != nil {
		logger.Warn("failed to save history", "error", err)
	}
}

func writeResult(out io.Writer, result *types.Result) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
