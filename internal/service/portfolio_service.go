package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/dexscreener"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/realtime"
)

// PortfolioStore loads and saves the full portfolio collection of the current owner.
// *storage.Selector satisfies it.
type PortfolioStore interface {
	LoadPortfolios(ctx context.Context) ([]model.Portfolio, error)
	SavePortfolios(ctx context.Context, portfolios []model.Portfolio) error
}

// Pacer throttles requests to the price source. ratelimit.Limiter satisfies it.
type Pacer interface {
	Take() time.Time
}

// PortfolioService owns the in-memory portfolio snapshot. Every mutation builds a
// new collection, persists it in full and then swaps it in, so readers never
// observe a half-applied change.
type PortfolioService struct {
	store     PortfolioStore
	prices    dexscreener.Client
	pacer     Pacer
	publisher realtime.Publisher
	clock     clock.Clock
	logger    logger.Logger

	mu         sync.RWMutex
	portfolios []model.Portfolio
	activeID   string
}

// NewPortfolioService creates a PortfolioService. Call Load before serving requests.
func NewPortfolioService(
	store PortfolioStore,
	prices dexscreener.Client,
	pacer Pacer,
	publisher realtime.Publisher,
	clk clock.Clock,
	logger logger.Logger,
) *PortfolioService {
	return &PortfolioService{
		store:     store,
		prices:    prices,
		pacer:     pacer,
		publisher: publisher,
		clock:     clk,
		logger:    logger.With("component", "portfolio-service"),
	}
}

// Load replaces the snapshot with the stored collection. An empty store gets the
// default portfolio. The active portfolio survives a reload when it still exists.
func (s *PortfolioService) Load(ctx context.Context) error {
	portfolios, err := s.store.LoadPortfolios(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieve, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(portfolios) == 0 {
		now := s.clock.Now().UTC()
		portfolios = []model.Portfolio{{
			ID:        model.DefaultPortfolioID,
			Name:      model.DefaultPortfolioName,
			Positions: []model.Position{},
			CreatedAt: now,
			UpdatedAt: now,
		}}
		if err := s.store.SavePortfolios(ctx, portfolios); err != nil {
			s.logger.Warnf("failed to save default portfolio: %v", err)
		}
	}

	s.portfolios = portfolios
	if indexOf(portfolios, s.activeID) < 0 {
		s.activeID = portfolios[0].ID
	}
	s.logger.Infof("loaded %d portfolios", len(portfolios))
	return nil
}

// Portfolios returns a copy of every portfolio in creation order.
func (s *PortfolioService) Portfolios() []model.Portfolio {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.ClonePortfolios(s.portfolios)
}

// Snapshot implements the price loop's portfolio view.
func (s *PortfolioService) Snapshot(_ context.Context) ([]model.Portfolio, error) {
	return s.Portfolios(), nil
}

// Portfolio returns one portfolio by ID.
func (s *PortfolioService) Portfolio(id string) (model.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.portfolios, id)
	if i < 0 {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	return s.portfolios[i].Clone(), nil
}

// Active returns the portfolio currently selected.
func (s *PortfolioService) Active() (model.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.portfolios, s.activeID)
	if i < 0 {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	return s.portfolios[i].Clone(), nil
}

// ActiveID returns the ID of the selected portfolio.
func (s *PortfolioService) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

func (s *PortfolioService) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.portfolios, id) < 0 {
		return apperrors.ErrPortfolioNotFound
	}
	s.activeID = id
	return nil
}

// CreatePortfolio adds an empty portfolio and makes it the active one.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, req request.CreatePortfolioRequest) (model.Portfolio, error) {
	now := s.clock.Now().UTC()
	p := model.Portfolio{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Positions: []model.Position{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.mutate(ctx, func(next []model.Portfolio) ([]model.Portfolio, error) {
		return append(next, p), nil
	})
	if err != nil {
		return model.Portfolio{}, err
	}

	s.mu.Lock()
	s.activeID = p.ID
	s.mu.Unlock()

	s.logger.Infof("created portfolio %s (%s)", p.Name, p.ID)
	return p, nil
}

func (s *PortfolioService) RenamePortfolio(ctx context.Context, id string, req request.UpdatePortfolioRequest) (model.Portfolio, error) {
	var out model.Portfolio
	err := s.mutate(ctx, func(next []model.Portfolio) ([]model.Portfolio, error) {
		i := indexOf(next, id)
		if i < 0 {
			return nil, apperrors.ErrPortfolioNotFound
		}
		if req.Name != nil {
			next[i].Name = strings.TrimSpace(*req.Name)
		}
		next[i].UpdatedAt = s.clock.Now().UTC()
		out = next[i].Clone()
		return next, nil
	})
	return out, err
}

// DeletePortfolio removes a portfolio. The last portfolio cannot be deleted.
// Deleting the active portfolio selects the first remaining one.
func (s *PortfolioService) DeletePortfolio(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(next []model.Portfolio) ([]model.Portfolio, error) {
		i := indexOf(next, id)
		if i < 0 {
			return nil, apperrors.ErrPortfolioNotFound
		}
		if len(next) <= 1 {
			return nil, apperrors.ErrLastPortfolio
		}
		return append(next[:i], next[i+1:]...), nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.activeID == id {
		s.activeID = s.portfolios[0].ID
	}
	s.mu.Unlock()

	s.logger.Infof("deleted portfolio %s", id)
	return nil
}

// AddPosition looks the token up on the price source and adds it to the
// portfolio valued at the current price. A failed lookup adds nothing.
func (s *PortfolioService) AddPosition(ctx context.Context, portfolioID string, req request.CreatePositionRequest) (model.Position, error) {
	if _, err := s.Portfolio(portfolioID); err != nil {
		return model.Position{}, err
	}

	info, err := s.prices.Lookup(ctx, strings.TrimSpace(req.ContractAddress))
	if err != nil {
		return model.Position{}, err
	}
	if !validPrice(info.CurrentPrice) {
		return model.Position{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidPrice, info.CurrentPrice)
	}

	pos := model.Position{
		ID:              uuid.New().String(),
		ContractAddress: strings.TrimSpace(req.ContractAddress),
		TokenName:       info.TokenName,
		TokenSymbol:     info.TokenSymbol,
		Network:         info.Network,
		Quantity:        req.Quantity,
		InvestedAmount:  req.InvestedAmount,
		LogoURL:         info.LogoURL,
		LastUpdated:     s.clock.Now().UTC(),
	}
	pos.Revalue(info.CurrentPrice)

	if err := s.insertPosition(ctx, portfolioID, pos); err != nil {
		return model.Position{}, err
	}
	s.logger.Infof("added %s to portfolio %s", pos.TokenSymbol, portfolioID)
	return pos, nil
}

// ImportPosition adds an imported position to the first portfolio without a
// price lookup. A missing average price is derived from the invested amount.
func (s *PortfolioService) ImportPosition(ctx context.Context, in model.ImportPosition) (model.Position, error) {
	if strings.TrimSpace(in.ContractAddress) == "" {
		return model.Position{}, apperrors.ErrInvalidAddress
	}
	if !(in.Quantity > 0) || math.IsInf(in.Quantity, 0) {
		return model.Position{}, errors.New("quantity must be greater than 0")
	}

	s.mu.RLock()
	if len(s.portfolios) == 0 {
		s.mu.RUnlock()
		return model.Position{}, apperrors.ErrPortfolioNotFound
	}
	portfolioID := s.portfolios[0].ID
	s.mu.RUnlock()

	network := in.Network
	if network == "" {
		network = model.DefaultNetwork
	}
	pos := model.Position{
		ID:              uuid.New().String(),
		ContractAddress: strings.TrimSpace(in.ContractAddress),
		TokenName:       in.TokenName,
		TokenSymbol:     in.TokenSymbol,
		Network:         network,
		Quantity:        in.Quantity,
		InvestedAmount:  in.InvestedAmount,
		LogoURL:         in.LogoURL,
		LastUpdated:     s.clock.Now().UTC(),
	}
	var price float64
	if in.CurrentPrice != nil {
		price = *in.CurrentPrice
	}
	pos.Revalue(price)
	if in.AveragePrice != nil && *in.AveragePrice != 0 {
		pos.AveragePrice = *in.AveragePrice
		pos.ProfitLossPercent = model.ProfitLossPercent(price, pos.AveragePrice)
	}

	if err := s.insertPosition(ctx, portfolioID, pos); err != nil {
		return model.Position{}, err
	}
	return pos, nil
}

func (s *PortfolioService) insertPosition(ctx context.Context, portfolioID string, pos model.Position) error {
	return s.mutate(ctx, func(next []model.Portfolio) ([]model.Portfolio, error) {
		i := indexOf(next, portfolioID)
		if i < 0 {
			return nil, apperrors.ErrPortfolioNotFound
		}
		next[i].Positions = append(next[i].Positions, pos)
		next[i].UpdatedAt = pos.LastUpdated
		return next, nil
	})
}

// UpdatePosition applies a user edit. Without an explicit price the current
// price is fetched again; when that fails the stored price is kept. All
// derived values are recomputed.
func (s *PortfolioService) UpdatePosition(ctx context.Context, portfolioID, positionID string, req request.UpdatePositionRequest) (model.Position, error) {
	existing, err := s.findPosition(portfolioID, positionID)
	if err != nil {
		return model.Position{}, err
	}

	price := existing.CurrentPrice
	switch {
	case req.CurrentPrice != nil:
		price = *req.CurrentPrice
	default:
		info, err := s.prices.Lookup(ctx, existing.ContractAddress)
		if err == nil && validPrice(info.CurrentPrice) {
			price = info.CurrentPrice
		} else {
			s.logger.Debugf("keeping stored price for %s: %v", existing.TokenSymbol, err)
		}
	}

	var out model.Position
	err = s.mutatePosition(ctx, portfolioID, positionID, func(pos *model.Position) {
		if req.Quantity != nil {
			pos.Quantity = *req.Quantity
		}
		if req.InvestedAmount != nil {
			pos.InvestedAmount = *req.InvestedAmount
		}
		pos.Revalue(price)
		pos.LastUpdated = s.clock.Now().UTC()
		out = *pos
	})
	return out, err
}

func (s *PortfolioService) DeletePosition(ctx context.Context, portfolioID, positionID string) error {
	return s.mutate(ctx, func(next []model.Portfolio) ([]model.Portfolio, error) {
		i := indexOf(next, portfolioID)
		if i < 0 {
			return nil, apperrors.ErrPortfolioNotFound
		}
		j := next[i].PositionIndex(positionID)
		if j < 0 {
			return nil, apperrors.ErrPositionNotFound
		}
		next[i].Positions = append(next[i].Positions[:j], next[i].Positions[j+1:]...)
		next[i].UpdatedAt = s.clock.Now().UTC()
		return next, nil
	})
}

// UpdatePositionPrice revalues one position at price. It is the write path of
// the price loop and of manual refreshes.
func (s *PortfolioService) UpdatePositionPrice(ctx context.Context, portfolioID, positionID string, price float64) (model.Position, error) {
	if !validPrice(price) {
		return model.Position{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidPrice, price)
	}
	var out model.Position
	err := s.mutatePosition(ctx, portfolioID, positionID, func(pos *model.Position) {
		pos.Revalue(price)
		pos.LastUpdated = s.clock.Now().UTC()
		out = *pos
	})
	return out, err
}

// RefreshReport summarizes a manual refresh.
type RefreshReport struct {
	Portfolio model.Portfolio `json:"portfolio"`
	Updated   int             `json:"updated"`
	Failed    []string        `json:"failed"`
}

// RefreshPortfolio fetches a fresh price for every position of one portfolio,
// paced like the price loop. Positions without a usable quote keep their price.
func (s *PortfolioService) RefreshPortfolio(ctx context.Context, portfolioID string) (RefreshReport, error) {
	p, err := s.Portfolio(portfolioID)
	if err != nil {
		return RefreshReport{}, err
	}

	report := RefreshReport{Failed: []string{}}
	prices := make(map[string]float64, len(p.Positions))
	for _, pos := range p.Positions {
		if err := ctx.Err(); err != nil {
			return RefreshReport{}, err
		}
		s.pacer.Take()
		info, err := s.prices.Lookup(ctx, pos.ContractAddress)
		if err != nil || !validPrice(info.CurrentPrice) {
			s.logger.Debugf("refresh of %s skipped: %v", pos.TokenSymbol, err)
			report.Failed = append(report.Failed, pos.TokenSymbol)
			continue
		}
		prices[pos.ID] = info.CurrentPrice
	}

	err = s.mutate(ctx, func(next []model.Portfolio) ([]model.Portfolio, error) {
		i := indexOf(next, portfolioID)
		if i < 0 {
			return nil, apperrors.ErrPortfolioNotFound
		}
		now := s.clock.Now().UTC()
		for j := range next[i].Positions {
			pos := &next[i].Positions[j]
			if price, ok := prices[pos.ID]; ok {
				pos.Revalue(price)
				pos.LastUpdated = now
				report.Updated++
			}
		}
		next[i].UpdatedAt = now
		report.Portfolio = next[i].Clone()
		return next, nil
	})
	if err != nil {
		return RefreshReport{}, err
	}
	return report, nil
}

// FindPosition locates a position in any portfolio.
func (s *PortfolioService) FindPosition(positionID string) (model.Position, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.portfolios {
		if j := p.PositionIndex(positionID); j >= 0 {
			return p.Positions[j], p.ID, true
		}
	}
	return model.Position{}, "", false
}

func (s *PortfolioService) findPosition(portfolioID, positionID string) (model.Position, error) {
	p, err := s.Portfolio(portfolioID)
	if err != nil {
		return model.Position{}, err
	}
	j := p.PositionIndex(positionID)
	if j < 0 {
		return model.Position{}, apperrors.ErrPositionNotFound
	}
	return p.Positions[j], nil
}

func (s *PortfolioService) mutatePosition(ctx context.Context, portfolioID, positionID string, fn func(pos *model.Position)) error {
	return s.mutate(ctx, func(next []model.Portfolio) ([]model.Portfolio, error) {
		i := indexOf(next, portfolioID)
		if i < 0 {
			return nil, apperrors.ErrPortfolioNotFound
		}
		j := next[i].PositionIndex(positionID)
		if j < 0 {
			return nil, apperrors.ErrPositionNotFound
		}
		fn(&next[i].Positions[j])
		next[i].UpdatedAt = next[i].Positions[j].LastUpdated
		return next, nil
	})
}

// mutate applies fn to a deep copy of the snapshot, persists the result and
// swaps it in. The snapshot is untouched when fn or the save fails.
func (s *PortfolioService) mutate(ctx context.Context, fn func(next []model.Portfolio) ([]model.Portfolio, error)) error {
	s.mu.Lock()
	next, err := fn(model.ClonePortfolios(s.portfolios))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.store.SavePortfolios(ctx, next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToPersist, err)
	}
	s.portfolios = next
	s.mu.Unlock()

	if s.publisher != nil {
		s.publisher.Publish(realtime.EventPortfolioUpdated, model.ClonePortfolios(next))
	}
	return nil
}

func indexOf(portfolios []model.Portfolio, id string) int {
	for i := range portfolios {
		if portfolios[i].ID == id {
			return i
		}
	}
	return -1
}

func validPrice(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
