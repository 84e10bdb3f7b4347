package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/fubl84/peakly-sub001/internal/errs"
	"github.com/fubl84/peakly-sub001/internal/model"
	"github.com/fubl84/peakly-sub001/internal/nutrition"
	"github.com/fubl84/peakly-sub001/internal/repository"
)

// memStore is an in-memory implementation of every repository interface.
type memStore struct {
	mu sync.Mutex

	ingredients map[uuid.UUID]model.Ingredient
	recipes     map[uuid.UUID]string
	links       map[uuid.UUID][]model.RecipeIngredient
	snapshots   map[uuid.UUID]model.NutritionSnapshot
	saveErr     map[uuid.UUID]error
	saves       int

	mealEntries []model.MealEntry

	paths       map[uuid.UUID]model.Path
	assignments map[uuid.UUID][]model.PathAssignment
	enrollments map[uuid.UUID]*model.Enrollment
	upserts     int

	shopping map[shoppingKey]float64
}

type shoppingKey struct {
	user, ingredient uuid.UUID
	week             time.Time
	unit             string
}

var (
	_ repository.IngredientRepository = (*memStore)(nil)
	_ repository.RecipeRepository     = (*memStore)(nil)
	_ repository.MealPlanRepository   = (*memStore)(nil)
	_ repository.PathRepository       = (*memStore)(nil)
	_ repository.EnrollmentRepository = (*memStore)(nil)
	_ repository.ShoppingRepository   = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		ingredients: map[uuid.UUID]model.Ingredient{},
		recipes:     map[uuid.UUID]string{},
		links:       map[uuid.UUID][]model.RecipeIngredient{},
		snapshots:   map[uuid.UUID]model.NutritionSnapshot{},
		saveErr:     map[uuid.UUID]error{},
		paths:       map[uuid.UUID]model.Path{},
		assignments: map[uuid.UUID][]model.PathAssignment{},
		enrollments: map[uuid.UUID]*model.Enrollment{},
		shopping:    map[shoppingKey]float64{},
	}
}

func newID() uuid.UUID { return uuid.Must(uuid.NewV4()) }

func ptr(v float64) *float64 { return &v }

func (m *memStore) addIngredient(name string, kcal float64, ov nutrition.Overrides) uuid.UUID {
	id := newID()
	m.ingredients[id] = model.Ingredient{ID: id, Name: name, Nutrition: nutrition.Per100g{Calories: ptr(kcal)}, Conversions: ov}
	return id
}

func (m *memStore) addRecipe(name string, items ...model.RecipeIngredient) uuid.UUID {
	id := newID()
	m.recipes[id] = name
	for i := range items {
		items[i].ID, items[i].RecipeID, items[i].Position = newID(), id, i
	}
	m.links[id] = items
	return id
}

// IngredientRepository

func (m *memStore) GetIngredient(_ context.Context, id uuid.UUID) (*model.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ing, ok := m.ingredients[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &ing, nil
}

func (m *memStore) UpdateIngredient(_ context.Context, ing *model.Ingredient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ingredients[ing.ID]; !ok {
		return errs.ErrNotFound
	}
	m.ingredients[ing.ID] = *ing
	return nil
}

func (m *memStore) DeleteIngredient(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ingredients[id]; !ok {
		return nil, errs.ErrNotFound
	}
	affected := m.recipeIDsLocked(id)
	for rid, items := range m.links {
		kept := items[:0]
		for _, it := range items {
			if it.IngredientID != id {
				kept = append(kept, it)
			}
		}
		m.links[rid] = kept
	}
	delete(m.ingredients, id)
	return affected, nil
}

func (m *memStore) recipeIDsLocked(ingredientID uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for rid, items := range m.links {
		for _, it := range items {
			if it.IngredientID == ingredientID {
				out = append(out, rid)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func (m *memStore) RecipeIDsByIngredient(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recipeIDsLocked(id), nil
}

// RecipeRepository

func (m *memStore) ListIngredientLines(_ context.Context, recipeID uuid.UUID) ([]model.IngredientLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.IngredientLine
	for _, it := range m.links[recipeID] {
		ing := m.ingredients[it.IngredientID]
		out = append(out, model.IngredientLine{
			IngredientID: ing.ID, Name: ing.Name, Amount: it.Amount, Unit: it.Unit,
			Nutrition: ing.Nutrition, Conversions: ing.Conversions,
		})
	}
	return out, nil
}

func (m *memStore) ReplaceIngredients(_ context.Context, recipeID uuid.UUID, items []model.RecipeIngredient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[recipeID]; !ok {
		return errs.ErrNotFound
	}
	for _, it := range items {
		if _, ok := m.ingredients[it.IngredientID]; !ok {
			return errs.ErrNotFound
		}
	}
	m.links[recipeID] = append([]model.RecipeIngredient(nil), items...)
	return nil
}

func (m *memStore) SaveNutrition(_ context.Context, s model.NutritionSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.saveErr[s.RecipeID]; err != nil {
		return err
	}
	if _, ok := m.recipes[s.RecipeID]; !ok {
		return errs.ErrNotFound
	}
	m.saves++
	m.snapshots[s.RecipeID] = s
	return nil
}

func (m *memStore) GetNutrition(_ context.Context, recipeID uuid.UUID) (*model.NutritionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snapshots[recipeID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) ListNutrition(_ context.Context) ([]model.RecipeNutrition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.RecipeNutrition, 0, len(m.snapshots))
	for id, s := range m.snapshots {
		out = append(out, model.RecipeNutrition{Name: m.recipes[id], Snapshot: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MealPlanRepository

func (m *memStore) ListSlots(_ context.Context, planID uuid.UUID) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, e := range m.mealEntries {
		if e.PlanID == planID && !seen[e.Slot] {
			seen[e.Slot] = true
			out = append(out, e.Slot)
		}
	}
	return out, nil
}

func (m *memStore) ListSlotLines(_ context.Context, planID uuid.UUID, slot string) ([]model.IngredientLine, error) {
	var out []model.IngredientLine
	for _, e := range m.mealEntries {
		if e.PlanID != planID || e.Slot != slot {
			continue
		}
		ing := m.ingredients[e.IngredientID]
		out = append(out, model.IngredientLine{
			IngredientID: ing.ID, Name: ing.Name, Amount: e.Amount, Unit: e.Unit,
			Nutrition: ing.Nutrition, Conversions: ing.Conversions,
		})
	}
	return out, nil
}

// PathRepository

func (m *memStore) GetPath(_ context.Context, id uuid.UUID) (*model.Path, error) {
	p, ok := m.paths[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) ListAssignments(_ context.Context, pathID uuid.UUID) ([]model.PathAssignment, error) {
	return append([]model.PathAssignment(nil), m.assignments[pathID]...), nil
}

// EnrollmentRepository

func (m *memStore) Create(_ context.Context, e *model.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.paths[e.PathID]; !ok {
		return errs.ErrNotFound
	}
	for _, old := range m.enrollments {
		if old.UserID == e.UserID {
			old.Active = false
		}
	}
	e.Active = true
	e.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cp := *e
	cp.Variants = append([]model.VariantSelection(nil), e.Variants...)
	m.enrollments[e.ID] = &cp
	return nil
}

func (m *memStore) Get(_ context.Context, id uuid.UUID) (*model.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *e
	cp.Variants = append([]model.VariantSelection(nil), e.Variants...)
	return &cp, nil
}

func (m *memStore) GetActive(ctx context.Context, userID uuid.UUID) (*model.Enrollment, error) {
	m.mu.Lock()
	var id uuid.UUID
	for _, e := range m.enrollments {
		if e.UserID == userID && e.Active {
			id = e.ID
		}
	}
	m.mu.Unlock()
	if id == uuid.Nil {
		return nil, errs.ErrNotFound
	}
	return m.Get(ctx, id)
}

func (m *memStore) UpsertVariants(_ context.Context, enrollmentID uuid.UUID, vs []model.VariantSelection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[enrollmentID]
	if !ok {
		return errs.ErrNotFound
	}
	m.upserts++
	for _, v := range vs {
		replaced := false
		for i := range e.Variants {
			if e.Variants[i].VariantTypeID == v.VariantTypeID {
				e.Variants[i].VariantOptionID = v.VariantOptionID
				replaced = true
			}
		}
		if !replaced {
			e.Variants = append(e.Variants, v)
		}
	}
	return nil
}

// ShoppingRepository

func (m *memStore) AddRecipe(_ context.Context, userID uuid.UUID, week time.Time, recipeID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[recipeID]; !ok {
		return errs.ErrNotFound
	}
	for _, it := range m.links[recipeID] {
		k := shoppingKey{user: userID, ingredient: it.IngredientID, week: week, unit: nutrition.NormalizeUnit(it.Unit)}
		m.shopping[k] += it.Amount
	}
	return nil
}

func (m *memStore) List(_ context.Context, userID uuid.UUID, week time.Time) ([]model.ShoppingListItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ShoppingListItem
	for k, amount := range m.shopping {
		if k.user != userID || !k.week.Equal(week) {
			continue
		}
		out = append(out, model.ShoppingListItem{
			UserID: userID, WeekStart: week, IngredientID: k.ingredient,
			Name: m.ingredients[k.ingredient].Name, Unit: k.unit, Amount: amount,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Unit < out[j].Unit
	})
	return out, nil
}
