// Package totp manages the time-based one-time-password second factor:
// secret provisioning, QR rendering for authenticator apps, and code
// verification during login, setup confirmation and disable.
package totp

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/pquerna/otp/totp"
)

// qrSize размер QR изображения в пикселях
const qrSize = 200

// Setup holds the material produced for a new two-factor enrollment.
// Nothing here is persisted: the secret only becomes active after the
// user proves their authenticator app generates matching codes.
type Setup struct {
	Secret          string // base32 secret for manual entry
	ProvisioningURI string // otpauth://totp/... URI
	QRCodePNG       string // base64 encoded PNG of the provisioning URI
}

// Manager generates and verifies TOTP material
type Manager struct {
	issuer string
}

// NewManager creates a manager that provisions secrets under the given issuer name
func NewManager(issuer string) *Manager {
	return &Manager{issuer: issuer}
}

// GenerateSecret creates a new random secret and its scannable representation
// for the given account. Stored state is not touched.
func (m *Manager) GenerateSecret(accountEmail string) (*Setup, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.issuer,
		AccountName: accountEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp secret: %w", err)
	}

	img, err := key.Image(qrSize, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode qr png: %w", err)
	}

	return &Setup{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
		QRCodePNG:       base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// VerifyCode validates a 6-digit code against the secret.
// Стандартный 30-секундный шаг, окно допуска ±1 шаг для рассинхронизации часов.
// Повтор кода внутри одного шага допускается — это свойство алгоритма.
func (m *Manager) VerifyCode(code, secret string) bool {
	if code == "" || secret == "" {
		return false
	}
	return totp.Validate(code, secret)
}
