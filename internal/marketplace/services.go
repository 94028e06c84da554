package marketplace

import (
	"context"
	"strings"

	"github.com/sudo-init-do/campusgigs/internal/apperr"
	"github.com/sudo-init-do/campusgigs/internal/models"
)

// ServiceInput is a listing submission.
type ServiceInput struct {
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Category         string       `json:"category"`
	Price            models.Price `json:"price"`
	HostName         string       `json:"hostName"`
	HostEmail        string       `json:"hostEmail"`
	Tags             []string     `json:"tags"`
	DeliveryEstimate string       `json:"deliveryEstimate"`
	PortfolioLink    string       `json:"portfolioLink"`
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ListServices returns the whole catalog, newest first.
func (m *Marketplace) ListServices(ctx context.Context) ([]models.Service, error) {
	services, err := m.store.ListServices(ctx)
	if err != nil {
		return nil, internalErr("list services", err)
	}
	if services == nil {
		services = []models.Service{}
	}
	return services, nil
}

// CreateService validates a submission and adds it to the catalog.
func (m *Marketplace) CreateService(ctx context.Context, in ServiceInput) (*models.Service, error) {
	hostEmail := NormalizeEmail(in.HostEmail)
	if hostEmail == "" || !CanSignIn(hostEmail) {
		return nil, apperr.Forbidden("Only approved college domains can list services.")
	}

	title := strings.TrimSpace(in.Title)
	category := strings.TrimSpace(in.Category)
	hostName := strings.TrimSpace(in.HostName)
	if title == "" || strings.TrimSpace(in.Description) == "" || in.Price.IsZero() || category == "" || hostName == "" {
		return nil, apperr.BadRequest("Missing required fields.")
	}
	if err := in.Price.Validate(); err != nil {
		return nil, apperr.BadRequest("Price must be a positive amount or a range with min not above max.")
	}
	if err := m.description.Check(in.Description); err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	svc := &models.Service{
		ID:               m.newID(),
		Title:            title,
		Description:      in.Description,
		Category:         category,
		Price:            in.Price,
		Currency:         models.Currency,
		HostName:         hostName,
		HostEmail:        hostEmail,
		HostRating:       models.DefaultHostRating,
		Tags:             tags,
		DeliveryEstimate: optional(in.DeliveryEstimate),
		PortfolioLink:    optional(in.PortfolioLink),
		CreatedAt:        m.now(),
	}
	if err := m.store.InsertService(ctx, svc); err != nil {
		return nil, internalErr("insert service", err)
	}
	m.events.ServiceCreated()
	return svc, nil
}

// canManage reports whether requester owns svc or is the admin.
func canManage(svc *models.Service, requester string) bool {
	return NormalizeEmail(svc.HostEmail) == requester || IsAdmin(requester)
}

func (m *Marketplace) managedService(ctx context.Context, id, requesterEmail string) (*models.Service, error) {
	requester := NormalizeEmail(requesterEmail)
	if requester == "" {
		return nil, apperr.Unauthorized("User email required.")
	}
	svc, err := m.store.GetService(ctx, id)
	if isNotFound(err) {
		return nil, apperr.NotFound("Service not found.")
	}
	if err != nil {
		return nil, internalErr("get service", err)
	}
	if !canManage(svc, requester) {
		return nil, apperr.Forbidden("You can only delete your own listings.")
	}
	return svc, nil
}

// DeleteService removes a listing owned by requesterEmail (or any listing
// for the admin). Cart and wishlist entries for it go with it.
func (m *Marketplace) DeleteService(ctx context.Context, id, requesterEmail string) error {
	if _, err := m.managedService(ctx, id, requesterEmail); err != nil {
		return err
	}
	if err := m.store.DeleteService(ctx, id); err != nil {
		if isNotFound(err) {
			return apperr.NotFound("Service not found.")
		}
		return internalErr("delete service", err)
	}
	m.events.ServiceDeleted()
	return nil
}

// ListInterests returns the cart entries students placed on a listing. Only
// its host and the admin may see them.
func (m *Marketplace) ListInterests(ctx context.Context, serviceID, requesterEmail string) ([]models.CartEntry, error) {
	_, err := m.managedService(ctx, serviceID, requesterEmail)
	if apperr.Is(err, apperr.KindForbidden) {
		return nil, apperr.Forbidden("Only the host can view interest in this listing.")
	}
	if err != nil {
		return nil, err
	}
	entries, err := m.store.ListCartByService(ctx, serviceID)
	if err != nil {
		return nil, internalErr("list interests", err)
	}
	if entries == nil {
		entries = []models.CartEntry{}
	}
	return entries, nil
}
