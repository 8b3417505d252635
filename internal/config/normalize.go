package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeLanguages(); err != nil {
		return err
	}
	c.normalizeVoices()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLanguages() error {
	normalized := make([]string, 0, len(c.Languages.Supported))
	for _, code := range c.Languages.Supported {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		tag, err := language.Parse(code)
		if err != nil {
			return fmt.Errorf("languages.supported: unknown code %q: %w", code, err)
		}
		base, _ := tag.Base()
		normalized = append(normalized, base.String())
	}
	c.Languages.Supported = normalized
	c.Languages.DefaultTarget = strings.ToLower(strings.TrimSpace(c.Languages.DefaultTarget))
	return nil
}

func (c *Config) normalizeVoices() {
	if len(c.Voices.Pools) == 0 {
		return
	}
	pools := make(map[string][]Voice, len(c.Voices.Pools))
	for code, pool := range c.Voices.Pools {
		normalized := make([]Voice, 0, len(pool))
		for _, voice := range pool {
			voice.ID = strings.TrimSpace(voice.ID)
			voice.Gender = strings.ToLower(strings.TrimSpace(voice.Gender))
			if voice.ID == "" {
				continue
			}
			normalized = append(normalized, voice)
		}
		pools[strings.ToLower(strings.TrimSpace(code))] = normalized
	}
	c.Voices.Pools = pools
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		c.Workflow.HeartbeatTimeout = defaultHeartbeatTimeout
	}
	if c.Workflow.SynthesisWorkers <= 0 {
		c.Workflow.SynthesisWorkers = defaultSynthesisWorkers
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
	if c.Workflow.MaxConcurrentJobWorkers <= 0 {
		c.Workflow.MaxConcurrentJobWorkers = defaultJobWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
