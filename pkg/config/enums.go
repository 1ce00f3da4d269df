package config

// Audience defines the target audience options for a generated post.
type Audience string

const (
	AudienceAcademic     Audience = "academic"
	AudienceProfessional Audience = "professional"
	AudienceGeneral      Audience = "general"
)

// IsValid checks if the audience is a recognized value.
func (a Audience) IsValid() bool {
	switch a {
	case AudienceAcademic, AudienceProfessional, AudienceGeneral:
		return true
	default:
		return false
	}
}

// Tone defines the writing tone options for a generated post.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneEnthusiastic Tone = "enthusiastic"
	ToneAcademic     Tone = "academic"
)

// IsValid checks if the tone is a recognized value.
func (t Tone) IsValid() bool {
	switch t {
	case ToneProfessional, ToneCasual, ToneEnthusiastic, ToneAcademic:
		return true
	default:
		return false
	}
}

// VerificationType selects which checks the standalone verify endpoint runs.
type VerificationType string

const (
	VerificationTechnical VerificationType = "technical"
	VerificationStyle     VerificationType = "style"
	VerificationBoth      VerificationType = "both"
)

// IsValid checks if the verification type is a recognized value.
func (v VerificationType) IsValid() bool {
	switch v {
	case VerificationTechnical, VerificationStyle, VerificationBoth:
		return true
	default:
		return false
	}
}
