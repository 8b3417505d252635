package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateLanguages(); err != nil {
		return err
	}
	if err := c.validateVoices(); err != nil {
		return err
	}
	if err := c.validateTiming(); err != nil {
		return err
	}
	if err := c.validateMixer(); err != nil {
		return err
	}
	if err := c.validateMerger(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate < 8000 {
		return errors.New("audio.sample_rate must be at least 8000")
	}
	return nil
}

func (c *Config) validateLanguages() error {
	if len(c.Languages.Supported) == 0 {
		return errors.New("languages.supported must list at least one language")
	}
	if c.Languages.DefaultTarget != "" && !c.SupportsTarget(c.Languages.DefaultTarget) {
		return fmt.Errorf("languages.default_target %q is not in languages.supported", c.Languages.DefaultTarget)
	}
	return nil
}

func (c *Config) validateVoices() error {
	for _, code := range c.Languages.Supported {
		if len(c.VoicePool(code)) == 0 {
			return fmt.Errorf("voices.pools.%s must define at least one voice", code)
		}
	}
	for code, pool := range c.Voices.Pools {
		for i, voice := range pool {
			switch voice.Gender {
			case "", "male", "female", "neutral":
			default:
				return fmt.Errorf("voices.pools.%s[%d]: unknown gender %q", code, i, voice.Gender)
			}
		}
	}
	return nil
}

func (c *Config) validateTiming() error {
	if c.Timing.ToleranceMillis <= 0 {
		return errors.New("timing.tolerance_millis must be positive")
	}
	if c.Timing.MinRate <= 0 || c.Timing.MaxRate <= 0 {
		return errors.New("timing.min_rate and timing.max_rate must be positive")
	}
	if c.Timing.MinRate > 1 {
		return errors.New("timing.min_rate must not exceed 1.0")
	}
	if c.Timing.MaxRate < 1 {
		return errors.New("timing.max_rate must be at least 1.0")
	}
	return nil
}

func (c *Config) validateMixer() error {
	if c.Mixer.OverlapAttenuation <= 0 || c.Mixer.OverlapAttenuation > 1 {
		return errors.New("mixer.overlap_attenuation must be in (0, 1]")
	}
	if c.Mixer.LimiterThreshold <= 0 || c.Mixer.LimiterThreshold >= 1 {
		return errors.New("mixer.limiter_threshold must be in (0, 1)")
	}
	if c.Mixer.MaxOutputSeconds <= 0 {
		return errors.New("mixer.max_output_seconds must be positive")
	}
	return nil
}

func (c *Config) validateMerger() error {
	if c.Merger.MergeGapSeconds < 0 {
		return errors.New("merger.merge_gap_seconds must not be negative")
	}
	return nil
}
