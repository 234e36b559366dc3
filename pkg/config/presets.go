package config

// Encoding is the full set of encoder parameters for one render: video
// quality plus audio bitrate and sample rate.
type Encoding struct {
	CRF             int
	Preset          string
	AudioBitrate    string
	AudioSampleRate int
}

// Quality maps a quality name to CRF and encoder speed preset.
type Quality struct {
	CRF    int
	Preset string
}

// standardCRF is the baseline the platform CRF offset is computed against.
const standardCRF = 23

// QualityFromName resolves a quality preset by name. Unknown names resolve
// to standard.
func QualityFromName(name string) Quality {
	switch name {
	case "draft":
		return Quality{CRF: 28, Preset: "ultrafast"}
	case "high":
		return Quality{CRF: 18, Preset: "slow"}
	default:
		return Quality{CRF: standardCRF, Preset: "medium"}
	}
}

// PlatformFromName resolves a named platform preset: encoding parameters
// tuned for a target distribution platform. Returns false for unknown names.
func PlatformFromName(name string) (Encoding, bool) {
	switch name {
	case "youtube-hd":
		return Encoding{CRF: 18, Preset: "slow", AudioBitrate: "384k", AudioSampleRate: 48000}, true
	case "youtube-4k":
		return Encoding{CRF: 18, Preset: "medium", AudioBitrate: "384k", AudioSampleRate: 48000}, true
	case "youtube-shorts":
		return Encoding{CRF: 20, Preset: "medium", AudioBitrate: "256k", AudioSampleRate: 48000}, true
	case "instagram-reels":
		return Encoding{CRF: 20, Preset: "medium", AudioBitrate: "128k", AudioSampleRate: 44100}, true
	case "tiktok":
		return Encoding{CRF: 20, Preset: "medium", AudioBitrate: "128k", AudioSampleRate: 44100}, true
	case "twitter":
		return Encoding{CRF: 22, Preset: "medium", AudioBitrate: "128k", AudioSampleRate: 44100}, true
	case "whatsapp":
		return Encoding{CRF: 26, Preset: "fast", AudioBitrate: "96k", AudioSampleRate: 44100}, true
	default:
		return Encoding{}, false
	}
}

// ResolveEncoding combines a quality name with an optional platform preset.
// With a platform, the platform's CRF is shifted by the quality's offset
// from the standard baseline (draft renders of a platform target stay
// fast, high-quality renders stay small), clamped to >= 1. Without a
// platform the quality maps directly with default audio parameters.
func ResolveEncoding(qualityName, platformName string) Encoding {
	quality := QualityFromName(qualityName)

	if platformName != "" {
		if enc, ok := PlatformFromName(platformName); ok {
			enc.CRF += quality.CRF - standardCRF
			if enc.CRF < 1 {
				enc.CRF = 1
			}
			return enc
		}
	}

	return Encoding{
		CRF:             quality.CRF,
		Preset:          quality.Preset,
		AudioBitrate:    "128k",
		AudioSampleRate: 44100,
	}
}
