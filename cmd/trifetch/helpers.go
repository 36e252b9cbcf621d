package main

import (
	"github.com/spf13/viper"

	"github.com/trifetch/trifetch/internal/vision"
	"github.com/trifetch/trifetch/internal/waveform"
)

// specFromConfig reads the ECG data shape from configuration.
func specFromConfig() waveform.Spec {
	return waveform.Spec{
		SampleRate:     viper.GetInt("ecg.sample_rate"),
		SegmentCount:   viper.GetInt("ecg.segment_count"),
		SegmentSamples: viper.GetInt("ecg.segment_samples"),
		Channels:       viper.GetInt("ecg.channels"),
	}
}

// visionConfigFromViper reads the classification service settings.
func visionConfigFromViper() vision.Config {
	return vision.Config{
		Provider:           viper.GetString("vision.provider"),
		APIKey:             viper.GetString("vision.api_key"),
		Model:              viper.GetString("vision.model"),
		Endpoint:           viper.GetString("vision.endpoint"),
		Timeout:            viper.GetDuration("vision.timeout"),
		FallbackConfidence: viper.GetFloat64("vision.fallback_confidence"),
		CacheEnabled:       viper.GetBool("vision.cache"),
	}
}
