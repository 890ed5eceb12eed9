package config

import (
	"fmt"
)

func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}

	if err := c.Film.Validate(); err != nil {
		return fmt.Errorf("film config: %w", err)
	}

	if c.Film.Store == "redis" || c.Film.ReplayKey != "" {
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("redis config: %w", err)
		}
	}

	if err := c.Encoder.Validate(); err != nil {
		return fmt.Errorf("encoder config: %w", err)
	}

	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output config: %w", err)
	}

	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator config: %w", err)
	}

	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"panic": true,
		"fatal": true,
		"error": true,
		"warn":  true,
		"info":  true,
		"debug": true,
		"trace": true,
	}

	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	if l.Format != "json" && l.Format != "text" {
		return fmt.Errorf("log format must be 'json' or 'text'")
	}

	if l.Output != "stdout" && l.Output != "stderr" {
		if l.MaxSize <= 0 {
			return fmt.Errorf("max_size must be positive for file output")
		}
		if l.MaxBackups < 0 {
			return fmt.Errorf("max_backups cannot be negative")
		}
		if l.MaxAge < 0 {
			return fmt.Errorf("max_age cannot be negative")
		}
	}

	return nil
}

func (m *MetricsConfig) Validate() error {
	if m.Enabled && m.TextfilePath == "" {
		return fmt.Errorf("textfile_path cannot be empty when metrics are enabled")
	}

	return nil
}

func (f *FilmConfig) Validate() error {
	if f.Store != "file" && f.Store != "redis" {
		return fmt.Errorf("film store must be 'file' or 'redis', got %q", f.Store)
	}

	if f.ReplayPath != "" && f.ReplayKey != "" {
		return fmt.Errorf("replay_path and replay_key are mutually exclusive")
	}

	if f.Save && f.Store == "file" && f.SaveDir == "" {
		return fmt.Errorf("save_dir is required to save films to files")
	}

	if f.TTL < 0 {
		return fmt.Errorf("ttl cannot be negative")
	}

	return nil
}

func (r *RedisConfig) Validate() error {
	if r.Address == "" {
		return fmt.Errorf("redis address is required")
	}

	if r.DB < 0 {
		return fmt.Errorf("invalid Redis database number: %d", r.DB)
	}

	if r.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}

	return nil
}

func (e *EncoderConfig) Validate() error {
	if e.CutNALU < -1 {
		return fmt.Errorf("cut_nalu must be -1 or a NALU index, got %d", e.CutNALU)
	}

	return nil
}

func (o *OutputConfig) Validate() error {
	if o.AVCC.Enabled && o.AVCC.Path == "" {
		return fmt.Errorf("avcc path is required when avcc output is enabled")
	}
	if o.JSON.Enabled && o.JSON.Path == "" {
		return fmt.Errorf("json path is required when json output is enabled")
	}

	if o.RTP.Enabled {
		if err := o.RTP.Validate(); err != nil {
			return fmt.Errorf("rtp: %w", err)
		}
	}

	return nil
}

func (r *RTPConfig) Validate() error {
	if r.MTU < 64 || r.MTU > 65535 {
		return fmt.Errorf("invalid MTU: %d", r.MTU)
	}

	if r.PayloadType > 127 {
		return fmt.Errorf("payload type must be 0-127, got %d", r.PayloadType)
	}

	if r.ClockRate == 0 || r.FrameRate == 0 {
		return fmt.Errorf("clock_rate and frame_rate must be positive")
	}

	if r.SendAddr != "" && r.PacketsPerSecond <= 0 {
		return fmt.Errorf("packets_per_second must be positive when sending")
	}

	if r.Burst < 0 {
		return fmt.Errorf("burst cannot be negative")
	}

	return nil
}

func (g *GeneratorConfig) Validate() error {
	if err := g.NumNALUs.Validate(); err != nil {
		return fmt.Errorf("num_nalus: %w", err)
	}

	if g.NumNALUs.Min == 0 {
		return fmt.Errorf("num_nalus: min must be at least 1")
	}

	enums := map[string]U32Enum{
		"header.nal_unit_types": g.Header.NalUnitTypes,
		"sps.profile_idc":       g.SPS.ProfileIDC,
		"sps.level_idc":         g.SPS.LevelIDC,
		"sei.payload_type":      g.SEI.PayloadType,
	}
	for name, e := range enums {
		if len(e.Values) == 0 {
			return fmt.Errorf("%s: at least one value is required", name)
		}
	}

	for _, t := range g.Header.NalUnitTypes.Values {
		if t > 31 {
			return fmt.Errorf("header.nal_unit_types: %d is not a NALU type", t)
		}
	}

	ranges := map[string]U32Range{
		"header.nal_ref_idc":          g.Header.NalRefIdc,
		"sps.seq_parameter_set_id":    g.SPS.SeqParameterSetID,
		"sps.pic_order_cnt_type":      g.SPS.PicOrderCntType,
		"pps.pic_parameter_set_id":    g.PPS.PicParameterSetID,
		"pps.num_slice_groups_minus1": g.PPS.NumSliceGroupsMinus1,
		"slice.slice_type":            g.Slice.SliceType,
		"slice.data_bytes":            g.Slice.DataBytes,
		"sei.message_count":           g.SEI.MessageCount,
		"payload.length":              g.Payload.Length,
	}
	for name, r := range ranges {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}

func (r U32Range) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("min %d is greater than max %d", r.Min, r.Max)
	}
	return nil
}

func (r I32Range) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("min %d is greater than max %d", r.Min, r.Max)
	}
	return nil
}
