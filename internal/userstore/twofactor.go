package userstore

import (
	"github.com/pquerna/otp/totp"

	"github.com/anchorvcs/anchor/internal/apperr"
)

// Issuer is embedded in every TOTP key's otpauth:// URL so authenticator
// apps label the entry clearly.
const Issuer = "Anchor"

// TwoFactorSetup is returned once, at enrollment time, so the caller can
// show the secret (and its otpauth:// URL, for a QR code or manual entry)
// before 2FA is actually turned on.
type TwoFactorSetup struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// GenerateTwoFactorSetup creates a new, not-yet-enabled TOTP secret for
// username. The caller must confirm it via ConfirmTwoFactor before it
// takes effect — GetTwoFactor still reports Enabled=false until then.
func (s *Store) GenerateTwoFactorSetup(username string) (TwoFactorSetup, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      Issuer,
		AccountName: username,
	})
	if err != nil {
		return TwoFactorSetup{}, apperr.Wrap(err, apperr.CodeInternal, "generate TOTP secret")
	}
	if err := s.SetTwoFactor(username, TwoFactor{Enabled: false, Secret: key.Secret()}); err != nil {
		return TwoFactorSetup{}, err
	}
	return TwoFactorSetup{Secret: key.Secret(), URL: key.URL()}, nil
}

// ConfirmTwoFactor validates a code against the pending secret and, on
// success, flips Enabled to true.
func (s *Store) ConfirmTwoFactor(username, code string) error {
	tf, err := s.GetTwoFactor(username)
	if err != nil {
		return err
	}
	if tf.Secret == "" {
		return apperr.Invalid("no pending 2FA setup for this user")
	}
	if !totp.Validate(code, tf.Secret) {
		return apperr.Unauthenticated("invalid verification code")
	}
	return s.SetTwoFactor(username, TwoFactor{Enabled: true, Secret: tf.Secret})
}

// VerifyTwoFactorCode checks a TOTP code against username's enabled
// secret. Returns false, nil (not an error) when 2FA isn't enabled at
// all, matching the login flow's "2FA required only if turned on" branch.
func (s *Store) VerifyTwoFactorCode(username, code string) (bool, error) {
	tf, err := s.GetTwoFactor(username)
	if err != nil {
		return false, err
	}
	if !tf.Enabled || tf.Secret == "" {
		return false, nil
	}
	return totp.Validate(code, tf.Secret), nil
}

// DisableTwoFactor turns 2FA off and discards the stored secret.
func (s *Store) DisableTwoFactor(username string) error {
	return s.SetTwoFactor(username, TwoFactor{Enabled: false})
}
