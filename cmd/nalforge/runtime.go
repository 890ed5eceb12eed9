package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/zsiec/nalforge/internal/config"
	"github.com/zsiec/nalforge/internal/encoder"
	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/internal/film"
	"github.com/zsiec/nalforge/internal/logger"
	"github.com/zsiec/nalforge/internal/metrics"
	"github.com/zsiec/nalforge/internal/output"
	"github.com/zsiec/nalforge/internal/syntax"
	"github.com/zsiec/nalforge/pkg/version"
)

// runtime is the loaded configuration and logger of one command run.
type runtime struct {
	cfg *config.Config
	log *logrus.Logger
}

// setup loads the configuration, applies the flags shared by the encoding
// commands and builds the logger.
func (a *application) setup(cmd *cli.Command) (*runtime, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if cmd.IsSet("log-level") {
		cfg.Logging.Level = cmd.String("log-level")
	}
	if cmd.IsSet("strict") {
		cfg.Encoder.Strict = cmd.Bool("strict")
	}
	if cmd.IsSet("output") {
		cfg.Output.AnnexBPath = cmd.String("output")
	}
	if cmd.IsSet("avcc") {
		cfg.Output.AVCC.Enabled = cmd.Bool("avcc")
		cfg.Output.AVCC.Path = trimExt(cfg.Output.AnnexBPath)
	}
	if cmd.IsSet("json") {
		cfg.Output.JSON.Enabled = cmd.Bool("json")
		cfg.Output.JSON.Path = trimExt(cfg.Output.AnnexBPath) + ".json"
	}
	if cmd.IsSet("rtp-dump") {
		cfg.Output.RTP.Enabled = true
		cfg.Output.RTP.DumpPath = cmd.String("rtp-dump")
	}
	if cmd.IsSet("rtp-send") {
		cfg.Output.RTP.Enabled = true
		cfg.Output.RTP.SendAddr = cmd.String("rtp-send")
	}
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	a.log = log
	a.rt = &runtime{cfg: cfg, log: log}
	logger.Base(log).WithFields(logrus.Fields{
		"command": cmd.Name,
		"config":  cmd.String("config"),
	}).Debug("Configuration loaded")
	return a.rt, nil
}

func trimExt(path string) string {
	return path[:len(path)-len(filepath.Ext(path))]
}

// writeMetrics exports the Prometheus textfile when metrics are enabled.
func (a *application) writeMetrics() {
	if a.rt == nil || !a.rt.cfg.Metrics.Enabled {
		return
	}
	if err := metrics.WriteTextfile(a.rt.cfg.Metrics.TextfilePath); err != nil {
		logger.Base(a.rt.log).WithError(err).Warn("Failed to write metrics textfile")
	}
}

// filmStore opens the configured film store.
func (rt *runtime) filmStore(ctx context.Context) (film.Store, func(), error) {
	if rt.cfg.Film.Store != "redis" {
		return film.NewFileStore(rt.cfg.Film.SaveDir), func() {}, nil
	}

	client := film.NewRedisClient(&rt.cfg.Redis)
	store := film.NewRedisStore(client, logger.WithComponent(rt.log, "film_store"), rt.cfg.Redis.KeyPrefix, rt.cfg.Film.TTL)
	if err := store.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return store, func() { _ = client.Close() }, nil
}

func (rt *runtime) encoderOptions() encoder.Options {
	return encoder.Options{
		Strict:  rt.cfg.Encoder.Strict,
		CutNALU: rt.cfg.Encoder.CutNALU,
		Logger:  logger.WithComponent(rt.log, "encoder"),
	}
}

// outputs records where a run wrote its results.
type outputs struct {
	AnnexB     string
	Extradata  string
	Samples    string
	JSON       string
	RTPDump    string
	RTPPackets int
	RTPSent    int
}

// writeOutputs writes the Annex-B stream and every enabled derived format.
// The JSON model is written from stream, the rest from res.
func (rt *runtime) writeOutputs(ctx context.Context, stream *syntax.Stream, res *encoder.Result) (*outputs, error) {
	cfg := &rt.cfg.Output
	out := &outputs{AnnexB: cfg.AnnexBPath}

	if err := writeFile(cfg.AnnexBPath, res.AnnexB); err != nil {
		return nil, err
	}
	metrics.AddOutputBytes("annexb", len(res.AnnexB))

	if cfg.JSON.Enabled {
		if err := writeJSON(cfg.JSON.Path, stream); err != nil {
			return nil, err
		}
		out.JSON = cfg.JSON.Path
	}

	if cfg.AVCC.Enabled {
		avcc, err := output.NewAVCCBuilder(rt.cfg.Encoder.Strict, logger.WithComponent(rt.log, "avcc")).Build(res.NALUs)
		if err != nil {
			return nil, err
		}
		if out.Extradata, out.Samples, err = avcc.WriteFiles(cfg.AVCC.Path); err != nil {
			return nil, err
		}
	}

	if cfg.RTP.Enabled {
		packets := output.NewPacketizer(cfg.RTP, logger.WithComponent(rt.log, "rtp")).PacketizeAll(res.NALUs)
		out.RTPPackets = len(packets)

		if cfg.RTP.DumpPath != "" {
			f, err := createFile(cfg.RTP.DumpPath)
			if err != nil {
				return nil, err
			}
			_, err = output.WriteRTPDump(f, packets)
			if cerr := f.Close(); err == nil && cerr != nil {
				err = apperrors.WrapStorageError(cerr, "failed to close RTP dump")
			}
			if err != nil {
				return nil, err
			}
			out.RTPDump = cfg.RTP.DumpPath
		}

		if cfg.RTP.SendAddr != "" {
			sender, err := output.NewUDPSender(cfg.RTP, logger.WithComponent(rt.log, "udp_sender"))
			if err != nil {
				return nil, err
			}
			out.RTPSent, err = sender.Send(ctx, packets)
			_ = sender.Close()
			if err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

func writeFile(path string, data []byte) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return apperrors.WrapStorageError(err, fmt.Sprintf("failed to write %s", path))
	}
	if err := f.Close(); err != nil {
		return apperrors.WrapStorageError(err, fmt.Sprintf("failed to close %s", path))
	}
	return nil
}

func writeJSON(path string, stream *syntax.Stream) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if err := stream.WriteJSON(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return apperrors.WrapStorageError(err, fmt.Sprintf("failed to close %s", path))
	}
	return nil
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperrors.WrapStorageError(err, "failed to create output directory")
		}
	}
	f, err := os.Create(path) //nolint:gosec // user-specified output path
	if err != nil {
		return nil, apperrors.WrapStorageError(err, fmt.Sprintf("failed to create %s", path))
	}
	return f, nil
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return nil, apperrors.NewValidationError("--input is required")
	}
	data, err := os.ReadFile(path) //nolint:gosec // user-specified input path
	if err != nil {
		return nil, apperrors.WrapStorageError(err, fmt.Sprintf("failed to read %s", path))
	}
	return data, nil
}

func startupFields(cmd *cli.Command) logrus.Fields {
	return logrus.Fields{
		"command": cmd.Name,
		"version": version.GetInfo().Short(),
	}
}
