package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"book-rental/models"
)

// Label substituted for lines whose product was deleted from the catalog.
const unavailableProductName = "Product no longer available"

// CartService is the cart reconciliation engine: it keeps every cart
// consistent with the invariant that total_price equals the sum of
// quantity times the product's current price across all lines.
//
// Mutations on the same owner are serialized through a per-owner mutex, so
// two concurrent requests cannot lose each other's updates. The unique
// owner_id index in the store backstops create races across processes.
type CartService struct {
	carts   CartStore
	catalog ProductCatalog

	mu    sync.Mutex
	locks map[primitive.ObjectID]*sync.Mutex
}

// NewCartService creates a CartService over the given store and catalog.
func NewCartService(carts CartStore, catalog ProductCatalog) *CartService {
	return &CartService{
		carts:   carts,
		catalog: catalog,
		locks:   make(map[primitive.ObjectID]*sync.Mutex),
	}
}

// ownerLock returns the mutex serializing mutations for one owner. The
// map holds one entry per owner ever seen and is never evicted; it is
// bounded by the user population, which stays small for a single library.
func (s *CartService) ownerLock(ownerID primitive.ObjectID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[ownerID] = lock
	}
	return lock
}

// AddOrMergeLine adds a rental line to the owner's cart, creating the cart
// if none exists. Adding a product already in the cart merges quantities
// instead of duplicating the line. The contact snapshot is only used on
// the create path.
func (s *CartService) AddOrMergeLine(ctx context.Context, ownerID primitive.ObjectID, contact models.ContactInfo, productID primitive.ObjectID, quantity int, startDate, endDate time.Time) (models.Cart, error) {
	if quantity <= 0 {
		return models.Cart{}, invalidRequestf("quantity must be positive, got %d", quantity)
	}
	if productID.IsZero() {
		return models.Cart{}, invalidRequestf("missing product id")
	}

	_, ok, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return models.Cart{}, err
	}
	if !ok {
		return models.Cart{}, invalidRequestf("product %s does not exist", productID.Hex())
	}

	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()
	line := models.CartLine{
		ProductID: productID,
		Quantity:  quantity,
		StartDate: startDate,
		EndDate:   endDate,
	}

	cart, ok, err := s.carts.FindByOwner(ctx, ownerID)
	if err != nil {
		return models.Cart{}, err
	}
	if !ok {
		cart = models.Cart{
			OwnerID:   ownerID,
			Lines:     []models.CartLine{line},
			Status:    models.StatusPending,
			Contact:   contact,
			CreatedAt: now,
			UpdatedAt: now,
		}
		cart.TotalPrice, err = s.currentTotal(ctx, cart.Lines)
		if err != nil {
			return models.Cart{}, err
		}
		return s.carts.Create(ctx, cart)
	}

	if i := cart.FindLine(productID); i >= 0 {
		cart.Lines[i].Quantity += quantity
	} else {
		cart.Lines = append(cart.Lines, line)
	}

	cart.TotalPrice, err = s.currentTotal(ctx, cart.Lines)
	if err != nil {
		return models.Cart{}, err
	}
	cart.UpdatedAt = now
	if err := s.carts.Save(ctx, cart); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

// SetLineQuantity overwrites the quantity of the line holding productID.
func (s *CartService) SetLineQuantity(ctx context.Context, ownerID, productID primitive.ObjectID, quantity int) (models.Cart, error) {
	if quantity <= 0 {
		return models.Cart{}, invalidRequestf("quantity must be positive, got %d", quantity)
	}

	_, ok, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return models.Cart{}, err
	}
	if !ok {
		return models.Cart{}, invalidRequestf("product %s does not exist", productID.Hex())
	}

	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	cart, i, err := s.findCartLine(ctx, ownerID, productID)
	if err != nil {
		return models.Cart{}, err
	}
	cart.Lines[i].Quantity = quantity

	cart.TotalPrice, err = s.currentTotal(ctx, cart.Lines)
	if err != nil {
		return models.Cart{}, err
	}
	cart.UpdatedAt = time.Now()
	if err := s.carts.Save(ctx, cart); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

// RemoveLine deletes the line holding productID from the owner's cart.
func (s *CartService) RemoveLine(ctx context.Context, ownerID, productID primitive.ObjectID) (models.Cart, error) {
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	cart, i, err := s.findCartLine(ctx, ownerID, productID)
	if err != nil {
		return models.Cart{}, err
	}
	cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)

	cart.TotalPrice, err = s.currentTotal(ctx, cart.Lines)
	if err != nil {
		return models.Cart{}, err
	}
	cart.UpdatedAt = time.Now()
	if err := s.carts.Save(ctx, cart); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

// ExtendLine moves the rental end date of the line holding productID.
// The total is unaffected: extending costs nothing.
func (s *CartService) ExtendLine(ctx context.Context, ownerID, productID primitive.ObjectID, newEndDate time.Time) (models.Cart, error) {
	if newEndDate.IsZero() {
		return models.Cart{}, invalidRequestf("missing new end date")
	}

	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	cart, i, err := s.findCartLine(ctx, ownerID, productID)
	if err != nil {
		return models.Cart{}, err
	}
	cart.Lines[i].EndDate = newEndDate
	cart.UpdatedAt = time.Now()
	if err := s.carts.Save(ctx, cart); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

// UpdateContactInfo overwrites the cart's contact snapshot. All three
// fields are required.
func (s *CartService) UpdateContactInfo(ctx context.Context, ownerID primitive.ObjectID, contact models.ContactInfo) (models.Cart, error) {
	if strings.TrimSpace(contact.FullName) == "" ||
		strings.TrimSpace(contact.Phone) == "" ||
		strings.TrimSpace(contact.Address) == "" {
		return models.Cart{}, invalidRequestf("full name, phone and address are required")
	}

	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	cart, ok, err := s.carts.FindByOwner(ctx, ownerID)
	if err != nil {
		return models.Cart{}, err
	}
	if !ok {
		return models.Cart{}, notFoundf("no cart for owner %s", ownerID.Hex())
	}

	cart.Contact = contact
	cart.UpdatedAt = time.Now()
	if err := s.carts.Save(ctx, cart); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

// SetStatus moves the cart through the borrowing workflow. The status must
// belong to the closed status set; administrative callers only.
func (s *CartService) SetStatus(ctx context.Context, ownerID primitive.ObjectID, status string) (models.Cart, error) {
	if !models.ValidCartStatus(status) {
		return models.Cart{}, invalidRequestf("unknown status %q", status)
	}

	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	cart, ok, err := s.carts.FindByOwner(ctx, ownerID)
	if err != nil {
		return models.Cart{}, err
	}
	if !ok {
		return models.Cart{}, notFoundf("no cart for owner %s", ownerID.Hex())
	}

	cart.Status = status
	cart.UpdatedAt = time.Now()
	if err := s.carts.Save(ctx, cart); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

// ViewCart returns the enriched line views for the owner's cart. A missing
// cart or an empty cart yields an empty list. Lines whose product was
// deleted from the catalog are kept, flagged unavailable with price zero.
func (s *CartService) ViewCart(ctx context.Context, ownerID primitive.ObjectID) ([]models.CartLineView, error) {
	cart, ok, err := s.carts.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !ok || len(cart.Lines) == 0 {
		return []models.CartLineView{}, nil
	}

	products, err := s.lookupProducts(ctx, cart.Lines)
	if err != nil {
		return nil, err
	}

	views := make([]models.CartLineView, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		view := models.CartLineView{
			ProductID:   line.ProductID,
			ProductName: unavailableProductName,
			Quantity:    line.Quantity,
			StartDate:   line.StartDate,
			EndDate:     line.EndDate,
		}
		if p, ok := products[line.ProductID]; ok {
			view.ProductName = p.Name
			view.UnitPrice = p.Price
			view.LineTotal = p.Price * float64(line.Quantity)
			view.Available = true
			if len(p.Images) > 0 {
				view.Image = p.Images[0]
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// ListCarts returns every cart for administrative review.
func (s *CartService) ListCarts(ctx context.Context) ([]models.Cart, error) {
	return s.carts.FindAll(ctx)
}

// findCartLine loads the owner's cart and locates the line for productID,
// translating both kinds of absence into the NotFound taxonomy.
func (s *CartService) findCartLine(ctx context.Context, ownerID, productID primitive.ObjectID) (models.Cart, int, error) {
	cart, ok, err := s.carts.FindByOwner(ctx, ownerID)
	if err != nil {
		return models.Cart{}, 0, err
	}
	if !ok {
		return models.Cart{}, 0, notFoundf("no cart for owner %s", ownerID.Hex())
	}
	i := cart.FindLine(productID)
	if i < 0 {
		return models.Cart{}, 0, notFoundf("product %s is not in the cart", productID.Hex())
	}
	return cart, i, nil
}

// currentTotal prices the lines against the catalog in one batched lookup
// and folds them with recomputeTotal. Every mutation of a cart's lines
// goes through here, so the total never drifts from current prices.
func (s *CartService) currentTotal(ctx context.Context, lines []models.CartLine) (float64, error) {
	products, err := s.lookupProducts(ctx, lines)
	if err != nil {
		return 0, err
	}
	prices := make(map[primitive.ObjectID]float64, len(products))
	for id, p := range products {
		prices[id] = p.Price
	}
	return recomputeTotal(lines, prices), nil
}

// recomputeTotal sums quantity times current unit price over all lines.
// Lines without a price entry (product deleted) contribute zero.
func recomputeTotal(lines []models.CartLine, prices map[primitive.ObjectID]float64) float64 {
	total := 0.0
	for _, line := range lines {
		total += prices[line.ProductID] * float64(line.Quantity)
	}
	return total
}

// lookupProducts batch-fetches the products referenced by lines into a map.
func (s *CartService) lookupProducts(ctx context.Context, lines []models.CartLine) (map[primitive.ObjectID]models.Product, error) {
	ids := make([]primitive.ObjectID, 0, len(lines))
	seen := make(map[primitive.ObjectID]bool, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}

	found, err := s.catalog.FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	products := make(map[primitive.ObjectID]models.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}
	return products, nil
}
