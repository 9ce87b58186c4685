// Package memstore provides an in-memory implementation of the repository
// interfaces. It backs deterministic unit tests and mirrors the semantics of
// the postgres repositories: lookups return copies (like row scans), numeric
// accumulations round to 2 decimals, and unique keys enforce the same
// merge/upsert behavior.
package memstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/ellavondegurechaff/societybot/societybot/database/repositories"
)

type playerKey struct {
	guildID, userID int64
}

type companyKey struct {
	guildID, entrepreneurID int64
}

type invKey struct {
	guildID, ownerID int64
	isCompany        bool
	itemTag          string
}

type marketKey struct {
	guildID int64
	itemTag string
}

type gdpKey struct {
	guildID int64
	day     string
}

type Store struct {
	mu sync.Mutex

	players     map[playerKey]*models.Player
	companies   map[companyKey]*models.Company
	items       map[string]*models.Item
	inventory   map[invKey]*models.InventoryLine
	market      map[marketKey]*models.MarketItem
	orders      map[int64]*models.Order
	governments map[int64]*models.Government
	gdp         map[gdpKey]*models.GdpEntry

	nextID int64
}

func New() *Store {
	return &Store{
		players:     make(map[playerKey]*models.Player),
		companies:   make(map[companyKey]*models.Company),
		items:       make(map[string]*models.Item),
		inventory:   make(map[invKey]*models.InventoryLine),
		market:      make(map[marketKey]*models.MarketItem),
		orders:      make(map[int64]*models.Order),
		governments: make(map[int64]*models.Government),
		gdp:         make(map[gdpKey]*models.GdpEntry),
	}
}

func (s *Store) Players() repositories.PlayerRepository         { return &playerStore{s} }
func (s *Store) Companies() repositories.CompanyRepository      { return &companyStore{s} }
func (s *Store) Items() repositories.ItemRepository             { return &itemStore{s} }
func (s *Store) Inventory() repositories.InventoryRepository    { return &inventoryStore{s} }
func (s *Store) Market() repositories.MarketRepository          { return &marketStore{s} }
func (s *Store) Orders() repositories.OrderRepository           { return &orderStore{s} }
func (s *Store) Governments() repositories.GovernmentRepository { return &governmentStore{s} }

func (s *Store) allocID() int64 {
	s.nextID++
	return s.nextID
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// --- players ---

type playerStore struct{ s *Store }

func (r *playerStore) GetByUserID(_ context.Context, guildID, userID int64) (*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[playerKey{guildID, userID}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *playerStore) GetOrCreate(ctx context.Context, guildID, userID int64) (*models.Player, error) {
	r.s.mu.Lock()
	if p, ok := r.s.players[playerKey{guildID, userID}]; ok {
		cp := *p
		r.s.mu.Unlock()
		return &cp, nil
	}
	r.s.mu.Unlock()

	p := models.NewDefaultPlayer(userID, guildID)
	if err := r.Create(ctx, p); err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (r *playerStore) Create(_ context.Context, player *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := playerKey{player.GuildID, player.UserID}
	if _, ok := r.s.players[key]; ok {
		return fmt.Errorf("player %d already exists in guild %d", player.UserID, player.GuildID)
	}
	player.ID = r.s.allocID()
	cp := *player
	r.s.players[key] = &cp
	return nil
}

func (r *playerStore) Update(_ context.Context, player *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := playerKey{player.GuildID, player.UserID}
	if _, ok := r.s.players[key]; !ok {
		return repositories.ErrNotFound
	}
	player.UpdatedAt = time.Now()
	cp := *player
	r.s.players[key] = &cp
	return nil
}

func (r *playerStore) AddMoney(_ context.Context, guildID, userID int64, delta float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[playerKey{guildID, userID}]
	if !ok {
		return repositories.ErrNotFound
	}
	p.Money = round2(p.Money + delta)
	p.UpdatedAt = time.Now()
	return nil
}

func (r *playerStore) AddTaxesOwed(_ context.Context, guildID, userID int64, delta float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[playerKey{guildID, userID}]
	if !ok {
		return repositories.ErrNotFound
	}
	p.TaxesOwed = round2(p.TaxesOwed + delta)
	p.UpdatedAt = time.Now()
	return nil
}

func (r *playerStore) ListTaxOwing(_ context.Context, guildID int64) ([]*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var owing []*models.Player
	for _, p := range r.s.players {
		if p.GuildID == guildID && p.TaxesOwed > 0 {
			cp := *p
			owing = append(owing, &cp)
		}
	}
	sort.Slice(owing, func(i, j int) bool {
		if owing[i].TaxesOwed != owing[j].TaxesOwed {
			return owing[i].TaxesOwed > owing[j].TaxesOwed
		}
		return owing[i].UserID < owing[j].UserID
	})
	return owing, nil
}

func (r *playerStore) Exists(_ context.Context, guildID, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.players[playerKey{guildID, userID}]
	return ok, nil
}

func (r *playerStore) Delete(_ context.Context, guildID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.players, playerKey{guildID, userID})
	return nil
}

func (r *playerStore) ReleaseEmployees(_ context.Context, guildID, entrepreneurID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.players {
		if p.GuildID == guildID && p.CompanyEntrepreneurID != nil && *p.CompanyEntrepreneurID == entrepreneurID {
			p.Job = ""
			p.CompanyEntrepreneurID = nil
			p.UpdatedAt = time.Now()
		}
	}
	return nil
}

// --- companies ---

type companyStore struct{ s *Store }

func (r *companyStore) GetByEntrepreneur(_ context.Context, guildID, entrepreneurID int64) (*models.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[companyKey{guildID, entrepreneurID}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *companyStore) Create(_ context.Context, company *models.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := companyKey{company.GuildID, company.EntrepreneurID}
	if _, ok := r.s.companies[key]; ok {
		return fmt.Errorf("company of %d already exists in guild %d", company.EntrepreneurID, company.GuildID)
	}
	company.ID = r.s.allocID()
	company.CreatedAt = time.Now()
	company.UpdatedAt = time.Now()
	cp := *company
	r.s.companies[key] = &cp
	return nil
}

func (r *companyStore) Update(_ context.Context, company *models.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := companyKey{company.GuildID, company.EntrepreneurID}
	if _, ok := r.s.companies[key]; !ok {
		return repositories.ErrNotFound
	}
	company.UpdatedAt = time.Now()
	cp := *company
	r.s.companies[key] = &cp
	return nil
}

func (r *companyStore) AddCapital(_ context.Context, guildID, entrepreneurID int64, delta float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[companyKey{guildID, entrepreneurID}]
	if !ok {
		return repositories.ErrNotFound
	}
	c.Capital = round2(c.Capital + delta)
	c.UpdatedAt = time.Now()
	return nil
}

func (r *companyStore) AddTaxesOwed(_ context.Context, guildID, entrepreneurID int64, delta float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[companyKey{guildID, entrepreneurID}]
	if !ok {
		return repositories.ErrNotFound
	}
	c.TaxesOwed = round2(c.TaxesOwed + delta)
	c.UpdatedAt = time.Now()
	return nil
}

func (r *companyStore) ListTaxOwing(_ context.Context, guildID int64) ([]*models.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var owing []*models.Company
	for _, c := range r.s.companies {
		if c.GuildID == guildID && c.TaxesOwed > 0 {
			cp := *c
			owing = append(owing, &cp)
		}
	}
	sort.Slice(owing, func(i, j int) bool {
		if owing[i].TaxesOwed != owing[j].TaxesOwed {
			return owing[i].TaxesOwed > owing[j].TaxesOwed
		}
		return owing[i].EntrepreneurID < owing[j].EntrepreneurID
	})
	return owing, nil
}

func (r *companyStore) Exists(_ context.Context, guildID, entrepreneurID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.companies[companyKey{guildID, entrepreneurID}]
	return ok, nil
}

func (r *companyStore) Delete(_ context.Context, guildID, entrepreneurID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.companies, companyKey{guildID, entrepreneurID})
	return nil
}

// --- items ---

type itemStore struct{ s *Store }

func (r *itemStore) GetByTag(_ context.Context, itemTag string) (*models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[itemTag]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *itemStore) GetAll(_ context.Context) ([]*models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := make([]*models.Item, 0, len(r.s.items))
	for _, item := range r.s.items {
		cp := *item
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemTag < items[j].ItemTag })
	return items, nil
}

func (r *itemStore) Create(_ context.Context, item *models.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.ItemTag]; ok {
		return nil // mirror ON CONFLICT DO NOTHING
	}
	cp := *item
	r.s.items[item.ItemTag] = &cp
	return nil
}

func (r *itemStore) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.items), nil
}

// --- inventory ---

type inventoryStore struct{ s *Store }

func (r *inventoryStore) Get(_ context.Context, guildID, ownerID int64, isCompany bool, itemTag string) (*models.InventoryLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	line, ok := r.s.inventory[invKey{guildID, ownerID, isCompany, itemTag}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *line
	if line.Durability != nil {
		d := *line.Durability
		cp.Durability = &d
	}
	return &cp, nil
}

func (r *inventoryStore) List(_ context.Context, guildID, ownerID int64, isCompany bool) ([]*models.InventoryLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var lines []*models.InventoryLine
	for _, line := range r.s.inventory {
		if line.GuildID == guildID && line.OwnerID == ownerID && line.IsCompany == isCompany {
			cp := *line
			if line.Durability != nil {
				d := *line.Durability
				cp.Durability = &d
			}
			lines = append(lines, &cp)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ItemTag < lines[j].ItemTag })
	return lines, nil
}

func (r *inventoryStore) Add(_ context.Context, guildID, ownerID int64, isCompany bool, itemTag string, amount int, durability *int) error {
	if amount <= 0 {
		return fmt.Errorf("inventory add: non-positive amount %d", amount)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := invKey{guildID, ownerID, isCompany, itemTag}
	if line, ok := r.s.inventory[key]; ok {
		line.Amount += amount
		line.UpdatedAt = time.Now()
		return nil
	}
	var dur *int
	if durability != nil {
		d := *durability
		dur = &d
	}
	r.s.inventory[key] = &models.InventoryLine{
		ID:         r.s.allocID(),
		GuildID:    guildID,
		OwnerID:    ownerID,
		IsCompany:  isCompany,
		ItemTag:    itemTag,
		Amount:     amount,
		Durability: dur,
		UpdatedAt:  time.Now(),
	}
	return nil
}

func (r *inventoryStore) Remove(_ context.Context, guildID, ownerID int64, isCompany bool, itemTag string, amount int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := invKey{guildID, ownerID, isCompany, itemTag}
	line, ok := r.s.inventory[key]
	if !ok {
		return fmt.Errorf("inventory remove: no %s held: %w", itemTag, repositories.ErrNotFound)
	}
	if line.Amount < amount {
		return fmt.Errorf("inventory remove: %d of %s held, %d requested", line.Amount, itemTag, amount)
	}
	line.Amount -= amount
	if line.Amount <= 0 {
		delete(r.s.inventory, key)
		return nil
	}
	line.UpdatedAt = time.Now()
	return nil
}

func (r *inventoryStore) Update(_ context.Context, line *models.InventoryLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := invKey{line.GuildID, line.OwnerID, line.IsCompany, line.ItemTag}
	if _, ok := r.s.inventory[key]; !ok {
		return repositories.ErrNotFound
	}
	line.UpdatedAt = time.Now()
	cp := *line
	if line.Durability != nil {
		d := *line.Durability
		cp.Durability = &d
	}
	r.s.inventory[key] = &cp
	return nil
}

func (r *inventoryStore) Delete(_ context.Context, line *models.InventoryLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.inventory, invKey{line.GuildID, line.OwnerID, line.IsCompany, line.ItemTag})
	return nil
}

func (r *inventoryStore) DeleteAllForOwner(_ context.Context, guildID, ownerID int64, isCompany bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key := range r.s.inventory {
		if key.guildID == guildID && key.ownerID == ownerID && key.isCompany == isCompany {
			delete(r.s.inventory, key)
		}
	}
	return nil
}

// --- market ---

type marketStore struct{ s *Store }

func (r *marketStore) Get(_ context.Context, guildID int64, itemTag string) (*models.MarketItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	mi, ok := r.s.market[marketKey{guildID, itemTag}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *mi
	return &cp, nil
}

func (r *marketStore) Create(_ context.Context, item *models.MarketItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := marketKey{item.GuildID, item.ItemTag}
	if _, ok := r.s.market[key]; ok {
		return nil // mirror ON CONFLICT DO NOTHING
	}
	item.ID = r.s.allocID()
	cp := *item
	r.s.market[key] = &cp
	return nil
}

func (r *marketStore) Update(_ context.Context, item *models.MarketItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := marketKey{item.GuildID, item.ItemTag}
	if _, ok := r.s.market[key]; !ok {
		return repositories.ErrNotFound
	}
	cp := *item
	r.s.market[key] = &cp
	return nil
}

// --- orders ---

type orderStore struct{ s *Store }

func (r *orderStore) GetOwn(_ context.Context, guildID, ownerID int64, isCompany bool, side models.OrderSide, itemTag string, unitPrice float64) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.GuildID == guildID && o.OwnerID == ownerID && o.IsCompany == isCompany &&
			o.Side == side && o.ItemTag == itemTag && o.UnitPrice == unitPrice {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *orderStore) Create(_ context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order.ID = r.s.allocID()
	order.CreatedAt = time.Now()
	cp := *order
	r.s.orders[order.ID] = &cp
	return nil
}

func (r *orderStore) Update(_ context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[order.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *order
	r.s.orders[order.ID] = &cp
	return nil
}

func (r *orderStore) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.orders, id)
	return nil
}

func (r *orderStore) Matchable(_ context.Context, guildID int64, side models.OrderSide, itemTag string, limit float64, now time.Time) ([]*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var orders []*models.Order
	for _, o := range r.s.orders {
		if o.GuildID != guildID || o.Side != side || o.ItemTag != itemTag || o.Expired(now) {
			continue
		}
		if side == models.OrderSideSell && o.UnitPrice > limit {
			continue
		}
		if side == models.OrderSideBuy && o.UnitPrice < limit {
			continue
		}
		cp := *o
		orders = append(orders, &cp)
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].UnitPrice != orders[j].UnitPrice {
			if side == models.OrderSideSell {
				return orders[i].UnitPrice < orders[j].UnitPrice
			}
			return orders[i].UnitPrice > orders[j].UnitPrice
		}
		return orders[i].ID < orders[j].ID
	})
	return orders, nil
}

func (r *orderStore) ListByOwner(_ context.Context, guildID, ownerID int64, isCompany bool, now time.Time) ([]*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var orders []*models.Order
	for _, o := range r.s.orders {
		if o.GuildID == guildID && o.OwnerID == ownerID && o.IsCompany == isCompany && !o.Expired(now) {
			cp := *o
			orders = append(orders, &cp)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].ItemTag != orders[j].ItemTag {
			return orders[i].ItemTag < orders[j].ItemTag
		}
		return orders[i].UnitPrice < orders[j].UnitPrice
	})
	return orders, nil
}

func (r *orderStore) ListByItem(_ context.Context, guildID int64, itemTag string, now time.Time) ([]*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var orders []*models.Order
	for _, o := range r.s.orders {
		if o.GuildID == guildID && o.ItemTag == itemTag && !o.Expired(now) {
			cp := *o
			orders = append(orders, &cp)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Side != orders[j].Side {
			return orders[i].Side < orders[j].Side
		}
		return orders[i].UnitPrice < orders[j].UnitPrice
	})
	return orders, nil
}

func (r *orderStore) DeleteOwn(_ context.Context, guildID, ownerID int64, isCompany bool, itemTag string, unitPrice *float64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var removed int64
	for id, o := range r.s.orders {
		if o.GuildID != guildID || o.OwnerID != ownerID || o.IsCompany != isCompany || o.ItemTag != itemTag {
			continue
		}
		if unitPrice != nil && o.UnitPrice != *unitPrice {
			continue
		}
		delete(r.s.orders, id)
		removed++
	}
	return removed, nil
}

func (r *orderStore) DeleteExpired(_ context.Context, guildID int64, itemTag string, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var removed int64
	for id, o := range r.s.orders {
		if o.GuildID == guildID && o.ItemTag == itemTag && o.Expired(now) {
			delete(r.s.orders, id)
			removed++
		}
	}
	return removed, nil
}

// --- government ---

type governmentStore struct{ s *Store }

func (r *governmentStore) GetOrCreate(_ context.Context, guildID int64) (*models.Government, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if gov, ok := r.s.governments[guildID]; ok {
		cp := *gov
		return &cp, nil
	}
	gov := models.NewDefaultGovernment(guildID)
	r.s.governments[guildID] = gov
	cp := *gov
	return &cp, nil
}

func (r *governmentStore) Update(_ context.Context, gov *models.Government) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.governments[gov.GuildID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *gov
	r.s.governments[gov.GuildID] = &cp
	return nil
}

func (r *governmentStore) AddTreasury(_ context.Context, guildID int64, delta float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	gov, ok := r.s.governments[guildID]
	if !ok {
		return repositories.ErrNotFound
	}
	gov.Treasury = round2(gov.Treasury + delta)
	return nil
}

func (r *governmentStore) SpendTreasury(_ context.Context, guildID int64, amount float64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	gov, ok := r.s.governments[guildID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if gov.Treasury < amount {
		return false, nil
	}
	gov.Treasury = round2(gov.Treasury - amount)
	return true, nil
}

func (r *governmentStore) AddGamblingPool(_ context.Context, guildID int64, delta float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	gov, ok := r.s.governments[guildID]
	if !ok {
		return repositories.ErrNotFound
	}
	gov.GamblingPool = round2(gov.GamblingPool + delta)
	return nil
}

func (r *governmentStore) AccrueGDP(_ context.Context, guildID int64, day string, amount float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := gdpKey{guildID, day}
	if entry, ok := r.s.gdp[key]; ok {
		entry.Value = round2(entry.Value + amount)
		return nil
	}
	r.s.gdp[key] = &models.GdpEntry{
		ID:      r.s.allocID(),
		GuildID: guildID,
		Day:     day,
		Value:   round2(amount),
	}
	return nil
}

func (r *governmentStore) GetGdp(_ context.Context, guildID int64, day string) (*models.GdpEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry, ok := r.s.gdp[gdpKey{guildID, day}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *entry
	return &cp, nil
}

func (r *governmentStore) ListGdp(_ context.Context, guildID int64) ([]*models.GdpEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var entries []*models.GdpEntry
	for _, entry := range r.s.gdp {
		if entry.GuildID == guildID {
			cp := *entry
			entries = append(entries, &cp)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Day < entries[j].Day })
	return entries, nil
}
