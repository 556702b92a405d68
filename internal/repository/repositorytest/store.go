// Package repositorytest provides an in-memory repository.Store for service tests.
package repositorytest

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	inErrors "github.com/Alturino/marketplace/internal/errors"
	"github.com/Alturino/marketplace/internal/item"
	"github.com/Alturino/marketplace/internal/repository"
)

type state struct {
	items     map[item.Type][]item.Item
	carts     map[uuid.UUID]repository.Cart
	cartItems map[uuid.UUID][]repository.CartItem
	orders    []repository.Order
	users     []repository.User
	tokens    map[uuid.UUID]repository.PasswordResetToken
	wishlist  []repository.WishlistItem
}

func newState() *state {
	return &state{
		items:     map[item.Type][]item.Item{},
		carts:     map[uuid.UUID]repository.Cart{},
		cartItems: map[uuid.UUID][]repository.CartItem{},
		tokens:    map[uuid.UUID]repository.PasswordResetToken{},
	}
}

func (s *state) clone() *state {
	cloned := newState()
	for t, items := range s.items {
		copied := make([]item.Item, len(items))
		for i, it := range items {
			l := it.Details()
			l.Reviews = slices.Clone(l.Reviews)
			copied[i] = item.WithListing(it, l)
		}
		cloned.items[t] = copied
	}
	for k, v := range s.carts {
		cloned.carts[k] = v
	}
	for k, v := range s.cartItems {
		cloned.cartItems[k] = slices.Clone(v)
	}
	cloned.orders = make([]repository.Order, len(s.orders))
	for i, o := range s.orders {
		o.Items = slices.Clone(o.Items)
		cloned.orders[i] = o
	}
	cloned.users = slices.Clone(s.users)
	for k, v := range s.tokens {
		cloned.tokens[k] = v
	}
	cloned.wishlist = slices.Clone(s.wishlist)
	return cloned
}

// Store keeps every table in memory. Transactions run one at a time and
// restore the previous state when they fail.
type Store struct {
	*queries
	mu       sync.Mutex
	st       *state
	failures map[string]error
	now      func() time.Time
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	s := &Store{st: newState(), failures: map[string]error{}, now: time.Now}
	s.queries = &queries{store: s}
	return s
}

// Fail makes every later call of method return err.
func (s *Store) Fail(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = err
}

func (s *Store) ExecTx(c context.Context, fn func(repository.Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures["ExecTx"]; err != nil {
		return err
	}

	snapshot := s.st.clone()
	if err := fn(&queries{store: s, inTx: true}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

type queries struct {
	store *Store
	inTx  bool
}

func (q *queries) begin(method string) (*state, func(), error) {
	unlock := func() {}
	if !q.inTx {
		q.store.mu.Lock()
		unlock = q.store.mu.Unlock
	}
	if err := q.store.failures[method]; err != nil {
		unlock()
		return nil, func() {}, err
	}
	return q.store.st, unlock, nil
}

func notFound(what string) error {
	return fmt.Errorf("%s with error=%w", what, inErrors.ErrNotFound)
}

func indexOfItem(items []item.Item, id uuid.UUID) int {
	return slices.IndexFunc(items, func(i item.Item) bool { return i.Details().ID == id })
}

func (q *queries) InsertItem(c context.Context, i item.Item) (item.Item, error) {
	st, done, err := q.begin("InsertItem")
	defer done()
	if err != nil {
		return nil, err
	}
	l := i.Details()
	for _, existing := range st.items[i.Type()] {
		d := existing.Details()
		if d.ID == l.ID || (d.SellerID == l.SellerID && d.Title == l.Title) {
			return nil, fmt.Errorf("%w: duplicate item", inErrors.ErrConflict)
		}
	}
	now := q.store.now()
	l.CreatedAt, l.UpdatedAt = now, now
	if l.Reviews == nil {
		l.Reviews = []item.Review{}
	}
	inserted := item.WithListing(i, l)
	st.items[i.Type()] = append(st.items[i.Type()], inserted)
	return inserted, nil
}

func (q *queries) FindItemById(c context.Context, t item.Type, id uuid.UUID) (item.Item, error) {
	st, done, err := q.begin("FindItemById")
	defer done()
	if err != nil {
		return nil, err
	}
	idx := indexOfItem(st.items[t], id)
	if idx < 0 {
		return nil, notFound("item")
	}
	return st.items[t][idx], nil
}

func (q *queries) LockItemById(c context.Context, t item.Type, id uuid.UUID) (item.Item, error) {
	return q.FindItemById(c, t, id)
}

func (q *queries) FindItemByTitleAndSellerId(c context.Context, t item.Type, title string, sellerId uuid.UUID) (item.Item, error) {
	st, done, err := q.begin("FindItemByTitleAndSellerId")
	defer done()
	if err != nil {
		return nil, err
	}
	for _, i := range st.items[t] {
		if i.Details().Title == title && i.Details().SellerID == sellerId {
			return i, nil
		}
	}
	return nil, notFound("item")
}

func (q *queries) FindItems(c context.Context, t item.Type) ([]item.Item, error) {
	st, done, err := q.begin("FindItems")
	defer done()
	if err != nil {
		return nil, err
	}
	return append([]item.Item{}, st.items[t]...), nil
}

func (q *queries) FindItemsBySellerId(c context.Context, t item.Type, sellerId uuid.UUID) ([]item.Item, error) {
	st, done, err := q.begin("FindItemsBySellerId")
	defer done()
	if err != nil {
		return nil, err
	}
	items := []item.Item{}
	for _, i := range st.items[t] {
		if i.Details().SellerID == sellerId {
			items = append(items, i)
		}
	}
	return items, nil
}

func (q *queries) updateItem(method string, t item.Type, id uuid.UUID, update func(*item.Listing) bool) (item.Item, error) {
	st, done, err := q.begin(method)
	defer done()
	if err != nil {
		return nil, err
	}
	idx := indexOfItem(st.items[t], id)
	if idx < 0 {
		return nil, notFound("item")
	}
	l := st.items[t][idx].Details()
	if !update(&l) {
		return nil, notFound("item")
	}
	l.UpdatedAt = q.store.now()
	st.items[t][idx] = item.WithListing(st.items[t][idx], l)
	return st.items[t][idx], nil
}

func (q *queries) DecrementItemQuantity(c context.Context, t item.Type, id uuid.UUID) (item.Item, error) {
	return q.updateItem("DecrementItemQuantity", t, id, func(l *item.Listing) bool {
		if l.TotalQuantity <= 0 {
			return false
		}
		l.TotalQuantity--
		return true
	})
}

func (q *queries) IncrementItemQuantity(c context.Context, t item.Type, id uuid.UUID) (item.Item, error) {
	return q.updateItem("IncrementItemQuantity", t, id, func(l *item.Listing) bool {
		l.TotalQuantity++
		return true
	})
}

func (q *queries) UpdateItemReviews(c context.Context, arg repository.UpdateItemReviewsParams) (item.Item, error) {
	return q.updateItem("UpdateItemReviews", arg.Type, arg.ID, func(l *item.Listing) bool {
		l.Reviews = slices.Clone(arg.Reviews)
		if l.Reviews == nil {
			l.Reviews = []item.Review{}
		}
		l.Ratings = arg.Ratings
		return true
	})
}

func (q *queries) UpsertCart(c context.Context, userId uuid.UUID) (repository.Cart, error) {
	st, done, err := q.begin("UpsertCart")
	defer done()
	if err != nil {
		return repository.Cart{}, err
	}
	now := q.store.now()
	cart, ok := st.carts[userId]
	if !ok {
		cart = repository.Cart{UserID: userId, CreatedAt: now}
	}
	cart.UpdatedAt = now
	st.carts[userId] = cart
	return cart, nil
}

func (q *queries) LockCartByUserId(c context.Context, userId uuid.UUID) (repository.Cart, error) {
	st, done, err := q.begin("LockCartByUserId")
	defer done()
	if err != nil {
		return repository.Cart{}, err
	}
	cart, ok := st.carts[userId]
	if !ok {
		return repository.Cart{}, notFound("cart")
	}
	return cart, nil
}

func (q *queries) DeleteCartByUserId(c context.Context, userId uuid.UUID) (int64, error) {
	st, done, err := q.begin("DeleteCartByUserId")
	defer done()
	if err != nil {
		return 0, err
	}
	if _, ok := st.carts[userId]; !ok {
		return 0, nil
	}
	delete(st.carts, userId)
	delete(st.cartItems, userId)
	return 1, nil
}

func (q *queries) FindCartItemsByUserId(c context.Context, userId uuid.UUID) ([]repository.CartItem, error) {
	st, done, err := q.begin("FindCartItemsByUserId")
	defer done()
	if err != nil {
		return nil, err
	}
	return append([]repository.CartItem{}, st.cartItems[userId]...), nil
}

func indexOfCartItem(items []repository.CartItem, key repository.CartItemKey) int {
	return slices.IndexFunc(items, func(i repository.CartItem) bool {
		return i.ItemID == key.ItemID && i.ItemType == key.ItemType
	})
}

func (q *queries) UpsertCartItem(c context.Context, arg repository.UpsertCartItemParams) (repository.CartItem, error) {
	st, done, err := q.begin("UpsertCartItem")
	defer done()
	if err != nil {
		return repository.CartItem{}, err
	}
	if _, ok := st.carts[arg.UserID]; !ok {
		return repository.CartItem{}, fmt.Errorf("%w: cart does not exist", inErrors.ErrUnexpected)
	}
	now := q.store.now()
	items := st.cartItems[arg.UserID]
	key := repository.CartItemKey{UserID: arg.UserID, ItemID: arg.ItemID, ItemType: arg.ItemType}
	if idx := indexOfCartItem(items, key); idx >= 0 {
		items[idx].Quantity++
		items[idx].UpdatedAt = now
		return items[idx], nil
	}
	cartItem := repository.CartItem{
		ID:        uuid.New(),
		UserID:    arg.UserID,
		ItemID:    arg.ItemID,
		ItemType:  arg.ItemType,
		Name:      arg.Name,
		Price:     arg.Price,
		ImageURL:  arg.ImageURL,
		SellerID:  arg.SellerID,
		Quantity:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	st.cartItems[arg.UserID] = append(items, cartItem)
	return cartItem, nil
}

func (q *queries) UpdateCartItemQuantity(c context.Context, arg repository.UpdateCartItemQuantityParams) (repository.CartItem, error) {
	st, done, err := q.begin("UpdateCartItemQuantity")
	defer done()
	if err != nil {
		return repository.CartItem{}, err
	}
	items := st.cartItems[arg.UserID]
	idx := indexOfCartItem(items, arg.CartItemKey)
	if idx < 0 {
		return repository.CartItem{}, notFound("cart item")
	}
	items[idx].Quantity = arg.Quantity
	items[idx].UpdatedAt = q.store.now()
	return items[idx], nil
}

func (q *queries) DeleteCartItem(c context.Context, arg repository.CartItemKey) (int64, error) {
	st, done, err := q.begin("DeleteCartItem")
	defer done()
	if err != nil {
		return 0, err
	}
	items := st.cartItems[arg.UserID]
	idx := indexOfCartItem(items, arg)
	if idx < 0 {
		return 0, nil
	}
	st.cartItems[arg.UserID] = slices.Delete(slices.Clone(items), idx, idx+1)
	return 1, nil
}

func (q *queries) InsertOrder(c context.Context, arg repository.Order) (repository.Order, error) {
	st, done, err := q.begin("InsertOrder")
	defer done()
	if err != nil {
		return repository.Order{}, err
	}
	if arg.Items == nil {
		arg.Items = []repository.OrderLine{}
	}
	arg.Items = slices.Clone(arg.Items)
	st.orders = append(st.orders, arg)
	return arg, nil
}

func (q *queries) FindOrdersByUserId(c context.Context, userId uuid.UUID) ([]repository.Order, error) {
	st, done, err := q.begin("FindOrdersByUserId")
	defer done()
	if err != nil {
		return nil, err
	}
	orders := []repository.Order{}
	for i := len(st.orders) - 1; i >= 0; i-- {
		if st.orders[i].UserID == userId {
			orders = append(orders, st.orders[i])
		}
	}
	return orders, nil
}

func (q *queries) FindOrders(c context.Context) ([]repository.Order, error) {
	st, done, err := q.begin("FindOrders")
	defer done()
	if err != nil {
		return nil, err
	}
	return append([]repository.Order{}, st.orders...), nil
}

func (q *queries) InsertUser(c context.Context, arg repository.InsertUserParams) (repository.User, error) {
	st, done, err := q.begin("InsertUser")
	defer done()
	if err != nil {
		return repository.User{}, err
	}
	for _, u := range st.users {
		if u.ID == arg.ID || u.Username == arg.Username || u.Email == arg.Email ||
			(arg.Phone != "" && u.Phone == arg.Phone) {
			return repository.User{}, fmt.Errorf("%w: duplicate user", inErrors.ErrConflict)
		}
	}
	createdAt := arg.CreatedAt
	if createdAt.IsZero() {
		createdAt = q.store.now()
	}
	user := repository.User{
		ID:        arg.ID,
		Username:  arg.Username,
		Email:     arg.Email,
		Password:  arg.Password,
		FirstName: arg.FirstName,
		LastName:  arg.LastName,
		Phone:     arg.Phone,
		IsSeller:  arg.IsSeller,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	st.users = append(st.users, user)
	return user, nil
}

func (q *queries) findUser(method string, match func(repository.User) bool) (repository.User, error) {
	st, done, err := q.begin(method)
	defer done()
	if err != nil {
		return repository.User{}, err
	}
	for _, u := range st.users {
		if match(u) {
			return u, nil
		}
	}
	return repository.User{}, notFound("user")
}

func (q *queries) FindUserById(c context.Context, id uuid.UUID) (repository.User, error) {
	return q.findUser("FindUserById", func(u repository.User) bool { return u.ID == id })
}

func (q *queries) FindUserByUsername(c context.Context, username string) (repository.User, error) {
	return q.findUser("FindUserByUsername", func(u repository.User) bool { return u.Username == username })
}

func (q *queries) FindUserByEmail(c context.Context, email string) (repository.User, error) {
	return q.findUser("FindUserByEmail", func(u repository.User) bool { return u.Email == email })
}

func (q *queries) FindUserConflicts(c context.Context, username, email, phone string) (repository.UserConflicts, error) {
	st, done, err := q.begin("FindUserConflicts")
	defer done()
	if err != nil {
		return repository.UserConflicts{}, err
	}
	conflicts := repository.UserConflicts{}
	for _, u := range st.users {
		conflicts.Username = conflicts.Username || u.Username == username
		conflicts.Email = conflicts.Email || u.Email == email
		conflicts.Phone = conflicts.Phone || (phone != "" && u.Phone == phone)
	}
	return conflicts, nil
}

func (q *queries) UpdateUserPassword(c context.Context, id uuid.UUID, password string) (repository.User, error) {
	st, done, err := q.begin("UpdateUserPassword")
	defer done()
	if err != nil {
		return repository.User{}, err
	}
	for i, u := range st.users {
		if u.ID == id {
			st.users[i].Password = password
			st.users[i].UpdatedAt = q.store.now()
			return st.users[i], nil
		}
	}
	return repository.User{}, notFound("user")
}

func (q *queries) InsertPasswordResetToken(c context.Context, arg repository.PasswordResetToken) (repository.PasswordResetToken, error) {
	st, done, err := q.begin("InsertPasswordResetToken")
	defer done()
	if err != nil {
		return repository.PasswordResetToken{}, err
	}
	if _, ok := st.tokens[arg.Token]; ok {
		return repository.PasswordResetToken{}, fmt.Errorf("%w: duplicate token", inErrors.ErrConflict)
	}
	arg.CreatedAt = q.store.now()
	st.tokens[arg.Token] = arg
	return arg, nil
}

func (q *queries) FindPasswordResetToken(c context.Context, token uuid.UUID) (repository.PasswordResetToken, error) {
	st, done, err := q.begin("FindPasswordResetToken")
	defer done()
	if err != nil {
		return repository.PasswordResetToken{}, err
	}
	t, ok := st.tokens[token]
	if !ok {
		return repository.PasswordResetToken{}, notFound("password reset token")
	}
	return t, nil
}

func (q *queries) DeletePasswordResetToken(c context.Context, token uuid.UUID) (int64, error) {
	st, done, err := q.begin("DeletePasswordResetToken")
	defer done()
	if err != nil {
		return 0, err
	}
	if _, ok := st.tokens[token]; !ok {
		return 0, nil
	}
	delete(st.tokens, token)
	return 1, nil
}

func (q *queries) InsertWishlistItem(c context.Context, arg repository.WishlistItem) (repository.WishlistItem, error) {
	st, done, err := q.begin("InsertWishlistItem")
	defer done()
	if err != nil {
		return repository.WishlistItem{}, err
	}
	for _, w := range st.wishlist {
		if w.ID == arg.ID || (w.UserID == arg.UserID && w.ItemID == arg.ItemID && w.ItemType == arg.ItemType) {
			return repository.WishlistItem{}, fmt.Errorf("%w: duplicate wishlist item", inErrors.ErrConflict)
		}
	}
	arg.CreatedAt = q.store.now()
	st.wishlist = append(st.wishlist, arg)
	return arg, nil
}

func (q *queries) FindWishlistItemById(c context.Context, userId uuid.UUID, id uuid.UUID) (repository.WishlistItem, error) {
	st, done, err := q.begin("FindWishlistItemById")
	defer done()
	if err != nil {
		return repository.WishlistItem{}, err
	}
	for _, w := range st.wishlist {
		if w.ID == id && w.UserID == userId {
			return w, nil
		}
	}
	return repository.WishlistItem{}, notFound("wishlist item")
}

func (q *queries) FindWishlistItemsByUserId(c context.Context, userId uuid.UUID) ([]repository.WishlistItem, error) {
	st, done, err := q.begin("FindWishlistItemsByUserId")
	defer done()
	if err != nil {
		return nil, err
	}
	items := []repository.WishlistItem{}
	for _, w := range st.wishlist {
		if w.UserID == userId {
			items = append(items, w)
		}
	}
	return items, nil
}

func (q *queries) DeleteWishlistItem(c context.Context, userId uuid.UUID, id uuid.UUID) (int64, error) {
	st, done, err := q.begin("DeleteWishlistItem")
	defer done()
	if err != nil {
		return 0, err
	}
	idx := slices.IndexFunc(st.wishlist, func(w repository.WishlistItem) bool {
		return w.ID == id && w.UserID == userId
	})
	if idx < 0 {
		return 0, nil
	}
	st.wishlist = slices.Delete(slices.Clone(st.wishlist), idx, idx+1)
	return 1, nil
}
