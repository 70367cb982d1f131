package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bytedance/sonic"
	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/notify"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/storage"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/validation"
)

// AdminSessionID identifies the single admin account.
const AdminSessionID = "admin"

// KeyValueStore is the device-local record store. *storage.LocalStore satisfies it.
type KeyValueStore interface {
	Get(key string, v any) (bool, error)
	Set(key string, v any) error
	Clear(keys ...string) error
}

// PositionImporter and AlertImporter apply import entries.
type PositionImporter interface {
	ImportPosition(ctx context.Context, in model.ImportPosition) (model.Position, error)
}

type AlertImporter interface {
	ImportAlert(ctx context.Context, in model.ImportAlert) (model.Alert, error)
}

// AdminConfig holds the admin gate settings.
type AdminConfig struct {
	Password   string
	Email      string
	SessionTTL time.Duration
	ResetDelay time.Duration
}

// AdminService guards the admin tools with a shared password. A login yields
// a fernet token; the session is also kept in local storage so a logout or an
// expiry invalidates every outstanding token.
type AdminService struct {
	cfg       AdminConfig
	key       *fernet.Key
	local     KeyValueStore
	positions PositionImporter
	alerts    AlertImporter
	clock     clock.Clock
	logger    logger.Logger
}

func NewAdminService(
	cfg AdminConfig,
	key *fernet.Key,
	local KeyValueStore,
	positions PositionImporter,
	alerts AlertImporter,
	clk clock.Clock,
	logger logger.Logger,
) *AdminService {
	return &AdminService{
		cfg:       cfg,
		key:       key,
		local:     local,
		positions: positions,
		alerts:    alerts,
		clock:     clk,
		logger:    logger.With("component", "admin"),
	}
}

// SessionKey decodes a base64 fernet key, or generates a fresh one when encoded
// is empty. Generated keys do not survive a restart.
func SessionKey(encoded string) (*fernet.Key, error) {
	if encoded != "" {
		k, err := fernet.DecodeKey(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode admin session key: %w", err)
		}
		return k, nil
	}
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return nil, fmt.Errorf("failed to generate admin session key: %w", err)
	}
	return &k, nil
}

type sessionClaims struct {
	ID        string `json:"id"`
	LoginUnix int64  `json:"loginTime"`
}

// Login checks the password and starts a session.
func (s *AdminService) Login(_ context.Context, req request.AdminLoginRequest) (model.AdminSession, error) {
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.cfg.Password)) != 1 {
		s.logger.Warnf("admin login rejected")
		return model.AdminSession{}, apperrors.ErrInvalidCredentials
	}

	now := s.clock.Now().UTC()
	claims, err := sonic.Marshal(sessionClaims{ID: AdminSessionID, LoginUnix: now.Unix()})
	if err != nil {
		return model.AdminSession{}, fmt.Errorf("failed to encode session: %w", err)
	}
	tok, err := fernet.EncryptAndSign(claims, s.key)
	if err != nil {
		return model.AdminSession{}, fmt.Errorf("failed to sign session: %w", err)
	}

	session := model.AdminSession{
		ID:        AdminSessionID,
		IsAdmin:   true,
		LoginTime: now,
		Token:     string(tok),
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.local.Set(storage.KeyAdminSession, session); err != nil {
		return model.AdminSession{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToPersist, err)
	}
	s.logger.Infof("admin logged in, session valid until %s", session.ExpiresAt.Format(time.RFC3339))
	return session, nil
}

// Verify accepts a token only when it is authentic, within its TTL and still
// the token of the stored session.
func (s *AdminService) Verify(token string) (model.AdminSession, error) {
	if token == "" {
		return model.AdminSession{}, apperrors.ErrSessionExpired
	}
	if fernet.VerifyAndDecrypt([]byte(token), s.cfg.SessionTTL, []*fernet.Key{s.key}) == nil {
		return model.AdminSession{}, apperrors.ErrSessionExpired
	}

	session, ok := s.Session()
	if !ok || subtle.ConstantTimeCompare([]byte(session.Token), []byte(token)) != 1 {
		return model.AdminSession{}, apperrors.ErrSessionExpired
	}
	return session, nil
}

// Session returns the stored session. An expired session is removed.
func (s *AdminService) Session() (model.AdminSession, bool) {
	var session model.AdminSession
	found, err := s.local.Get(storage.KeyAdminSession, &session)
	if err != nil {
		s.logger.Warnf("failed to read admin session: %v", err)
		return model.AdminSession{}, false
	}
	if !found || !session.IsAdmin {
		return model.AdminSession{}, false
	}
	if !s.clock.Now().Before(session.ExpiresAt) {
		if err := s.local.Clear(storage.KeyAdminSession); err != nil {
			s.logger.Warnf("failed to clear expired admin session: %v", err)
		}
		return model.AdminSession{}, false
	}
	return session, true
}

func (s *AdminService) Logout() error {
	if err := s.local.Clear(storage.KeyAdminSession); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToPersist, err)
	}
	s.logger.Infof("admin logged out")
	return nil
}

// SendPasswordReset simulates a reset mail to the admin address. No mail is
// sent; the reset token is only logged.
func (s *AdminService) SendPasswordReset(ctx context.Context, req request.PasswordResetRequest) error {
	address := strings.TrimSpace(req.Email)
	if address == "" {
		address = s.cfg.Email
	}
	if !strings.EqualFold(address, s.cfg.Email) {
		return apperrors.ErrUnknownAdminEmail
	}

	s.logger.Infof("sending password reset email to: %s", s.cfg.Email)
	if err := notify.Wait(ctx, s.clock, s.cfg.ResetDelay); err != nil {
		return err
	}
	s.logger.Infof("password reset token: %s", strings.ReplaceAll(uuid.NewString(), "-", "")[:13])
	return nil
}

// Import applies an import document entry by entry. Entries fail on their own;
// only a document that is not valid JSON fails as a whole.
func (s *AdminService) Import(ctx context.Context, raw []byte) (model.ImportReport, error) {
	var doc model.ImportRequest
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return model.ImportReport{}, &validation.Error{Fields: map[string]string{
			"json": "Invalid JSON format: " + err.Error(),
		}}
	}

	report := model.ImportReport{Results: []string{}}
	for _, p := range doc.AddPosition {
		if _, err := s.positions.ImportPosition(ctx, p); err != nil {
			report.Failed++
			report.Results = append(report.Results, fmt.Sprintf("❌ Failed to add position: %s - %v", p.TokenSymbol, err))
			continue
		}
		report.Added++
		report.Results = append(report.Results, "✅ Added position: "+p.TokenSymbol)
	}
	for _, a := range doc.AddAlerts {
		if _, err := s.alerts.ImportAlert(ctx, a); err != nil {
			report.Failed++
			report.Results = append(report.Results, fmt.Sprintf("❌ Failed to add alert: %s - %v", a.TokenSymbol, err))
			continue
		}
		report.Added++
		report.Results = append(report.Results, fmt.Sprintf("✅ Added alert: %s at $%s",
			a.TokenSymbol, strconv.FormatFloat(a.TargetPrice, 'f', -1, 64)))
	}

	s.logger.Infof("import finished: %d added, %d failed", report.Added, report.Failed)
	return report, nil
}

// ImportTemplate returns an example import document.
func ImportTemplate() model.ImportRequest {
	avg, current, volume := 0.1, 0.12, 0.5
	oneTime, sound := true, true
	return model.ImportRequest{
		AddPosition: []model.ImportPosition{{
			ContractAddress: "0x1234567890123456789012345678901234567890",
			TokenName:       "Example Token",
			TokenSymbol:     "EXAMPLE",
			Network:         model.DefaultNetwork,
			Quantity:        1000,
			InvestedAmount:  100,
			AveragePrice:    &avg,
			CurrentPrice:    &current,
			LogoURL:         "https://example.com/logo.png",
		}},
		AddAlerts: []model.ImportAlert{{
			PositionID:          "position_id_here",
			TokenSymbol:         "EXAMPLE",
			TokenName:           "Example Token",
			ContractAddress:     "0x1234567890123456789012345678901234567890",
			TargetPrice:         0.15,
			AlertType:           model.AlertKindPrice,
			IsOneTime:           &oneTime,
			SoundEnabled:        &sound,
			SoundFile:           model.DefaultSoundID,
			Volume:              &volume,
			BrowserNotification: true,
		}},
	}
}
