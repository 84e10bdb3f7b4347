package grpcserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/fubl84/peakly-sub001/internal/assistant"
	"github.com/fubl84/peakly-sub001/internal/convert"
	"github.com/fubl84/peakly-sub001/internal/errs"
	"github.com/fubl84/peakly-sub001/internal/metrics"
	"github.com/fubl84/peakly-sub001/internal/model"
	"github.com/fubl84/peakly-sub001/internal/nutrition"
	"github.com/fubl84/peakly-sub001/internal/service"
)

var fixedNow = time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC) // Wednesday

type fakeNutrition struct {
	service.NutritionCache
	done  []uuid.UUID
	err   error
	ing   *model.Ingredient
	items []model.RecipeIngredient
}

func (f *fakeNutrition) RecomputeRecipe(_ context.Context, id uuid.UUID) (model.NutritionSnapshot, error) {
	if f.err != nil {
		return model.NutritionSnapshot{}, f.err
	}
	return model.NutritionSnapshot{
		RecipeID:   id,
		Nutrients:  nutrition.Nutrients{Calories: 207.5, Protein: 12.3},
		TotalGrams: 175,
		ComputedAt: fixedNow,
	}, nil
}

func (f *fakeNutrition) RecomputeByIngredient(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return f.done, f.err
}

func (f *fakeNutrition) UpdateIngredient(_ context.Context, ing *model.Ingredient) ([]uuid.UUID, error) {
	f.ing = ing
	return f.done, f.err
}

func (f *fakeNutrition) DeleteIngredient(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return f.done, f.err
}

func (f *fakeNutrition) SetRecipeIngredients(ctx context.Context, id uuid.UUID, items []model.RecipeIngredient) (model.NutritionSnapshot, error) {
	f.items = items
	return f.RecomputeRecipe(ctx, id)
}

func (f *fakeNutrition) GetSnapshot(ctx context.Context, id uuid.UUID) (*model.NutritionSnapshot, error) {
	snap, err := f.RecomputeRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

type fakeSlots struct {
	recipe uuid.UUID
}

func (f *fakeSlots) suggestion(slot string) service.SlotSuggestion {
	return service.SlotSuggestion{
		Slot:   slot,
		Target: nutrition.SlotTarget{Macros: nutrition.Macros{Calories: 500, Protein: 30}},
		Matches: []nutrition.SlotMatch{{
			Candidate: nutrition.Candidate{ID: f.recipe, Name: "Quark bowl", Macros: nutrition.Macros{Calories: 510, Protein: 28}},
			Result:    nutrition.MatchResult{Score: 12.5},
		}},
	}
}

func (f *fakeSlots) SuggestForSlot(_ context.Context, _ uuid.UUID, slot string, _ int) (service.SlotSuggestion, error) {
	switch slot {
	case "dinner":
		return service.SlotSuggestion{}, fmt.Errorf("slot %q: %w", slot, errs.ErrNotFound)
	case "snack":
		return service.SlotSuggestion{Slot: slot}, nil
	}
	return f.suggestion(slot), nil
}

func (f *fakeSlots) SuggestForPlan(context.Context, uuid.UUID, int) ([]service.SlotSuggestion, error) {
	return []service.SlotSuggestion{f.suggestion("breakfast"), f.suggestion("lunch")}, nil
}

type fakeContent struct {
	gotSelected []uuid.UUID
	gotKind     *model.ContentKind
}

func (f *fakeContent) ResolveAssignments(_ context.Context, _ uuid.UUID, week int, selected []uuid.UUID, kind *model.ContentKind) ([]model.PathAssignment, error) {
	f.gotSelected, f.gotKind = selected, kind
	return []model.PathAssignment{{ID: uuid.Must(uuid.NewV4()), Kind: model.KindTraining, WeekStart: week, WeekEnd: week}}, nil
}

func (f *fakeContent) ContentForUser(_ context.Context, userID uuid.UUID, _ *model.ContentKind) (service.UserContent, error) {
	return service.UserContent{
		Enrollment:  model.Enrollment{ID: uuid.Must(uuid.NewV4()), UserID: userID, StartDate: fixedNow.AddDate(0, 0, -7)},
		Week:        2,
		Assignments: []model.PathAssignment{
			{ID: uuid.Must(uuid.NewV4()), Kind: model.KindTraining, WeekStart: 1, WeekEnd: 4},
			{ID: uuid.Must(uuid.NewV4()), Kind: model.KindInfo, WeekStart: 2, WeekEnd: 2},
		},
	}, nil
}

type fakeEnrollments struct {
	byID   map[uuid.UUID]*model.Enrollment
	locked bool
}

func (f *fakeEnrollments) CreateEnrollment(_ context.Context, userID, pathID uuid.UUID, start time.Time, vs []model.VariantSelection) (*model.Enrollment, error) {
	e := &model.Enrollment{ID: uuid.Must(uuid.NewV4()), UserID: userID, PathID: pathID, StartDate: start, Active: true, Variants: vs}
	f.byID[e.ID] = e
	return e, nil
}

func (f *fakeEnrollments) UpdateEnrollmentVariants(_ context.Context, id uuid.UUID, vs []model.VariantSelection) (*model.Enrollment, error) {
	if f.locked {
		return nil, errs.ErrVariantsLocked
	}
	e := f.byID[id]
	e.Variants = vs
	return e, nil
}

func (f *fakeEnrollments) CanUpdateVariants(time.Time) bool { return !f.locked }

func (f *fakeEnrollments) GetEnrollment(_ context.Context, id uuid.UUID) (*model.Enrollment, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return e, nil
}

type fakeShopping struct {
	gotUser uuid.UUID
	gotDay  time.Time
}

func (f *fakeShopping) AddRecipe(_ context.Context, userID uuid.UUID, day time.Time, _ uuid.UUID) ([]model.ShoppingListItem, error) {
	f.gotUser, f.gotDay = userID, day
	return []model.ShoppingListItem{{IngredientID: uuid.Must(uuid.NewV4()), Name: "Haferflocken", Unit: "g", Amount: 100}}, nil
}

func (f *fakeShopping) List(_ context.Context, userID uuid.UUID, day time.Time) ([]model.ShoppingListItem, error) {
	f.gotUser, f.gotDay = userID, day
	return []model.ShoppingListItem{}, nil
}

type stubGenerator struct{ reply string }

func (g stubGenerator) Generate(context.Context, string) (string, error) { return g.reply, nil }

type harness struct {
	client  *Client
	srv     *Server
	signKey []byte
	metrics *metrics.Memory
	content *fakeContent
	enroll  *fakeEnrollments
	shop    *fakeShopping
	nutri   *fakeNutrition
	recipe  uuid.UUID
}

const bufSize = 1 << 20

func startHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		signKey: []byte("test-secret"),
		metrics: metrics.NewMemory(),
		content: &fakeContent{},
		enroll:  &fakeEnrollments{byID: map[uuid.UUID]*model.Enrollment{}},
		shop:    &fakeShopping{},
		nutri:   &fakeNutrition{},
		recipe:  uuid.Must(uuid.NewV4()),
	}
	log := zaptest.NewLogger(t)
	gen := stubGenerator{reply: fmt.Sprintf(`{"title":"Quark bowl","recipe_ids":[%q]}`, h.recipe)}
	h.srv = New(Services{
		Nutrition:   h.nutri,
		Slots:       &fakeSlots{recipe: h.recipe},
		Content:     h.content,
		Enrollments: h.enroll,
		Shopping:    h.shop,
		Assistant:   assistant.New(gen, log),
	}, h.signKey, func() time.Time { return fixedNow })

	lis := bufconn.Listen(bufSize)
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(
		RecoverUnary(log),
		LoggingUnary(log),
		MetricsUnary(h.metrics),
		h.srv.AuthUnary(),
	))
	RegisterCoreServer(gs, h.srv)
	go func() { _ = gs.Serve(lis) }()

	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cc.Close(); gs.Stop(); _ = lis.Close() })

	h.client = NewClient(cc)
	return h
}

func (h *harness) as(t *testing.T, user uuid.UUID) context.Context {
	t.Helper()
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   user.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.signKey)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+tok)
}

func req(t *testing.T, o convert.Object) *structpb.Struct {
	t.Helper()
	s, err := convert.ToStruct(o)
	require.NoError(t, err)
	return s
}

func requireCode(t *testing.T, want codes.Code, err error) {
	t.Helper()
	st, ok := status.FromError(err)
	require.True(t, ok, "not a status error: %v", err)
	require.Equal(t, want, st.Code(), st.Message())
}

func TestServer_ConvertToGrams(t *testing.T) {
	t.Parallel()
	h := startHarness(t)
	ctx := context.Background()

	out, err := h.client.Call(ctx, MethodConvertToGrams, req(t, convert.Object{
		"amount": 2, "unit": "EL", "overrides": convert.Object{"grams_per_tablespoon": 12},
	}))
	require.NoError(t, err)
	require.Equal(t, 24.0, out.Fields["grams"].GetNumberValue())
	require.Equal(t, "el", out.Fields["unit"].GetStringValue())
	require.False(t, out.Fields["is_estimated"].GetBoolValue())

	out, err = h.client.Call(ctx, MethodConvertToGrams, req(t, convert.Object{"amount": 3, "unit": "Becher"}))
	require.NoError(t, err)
	require.IsType(t, &structpb.Value_NullValue{}, out.Fields["grams"].GetKind())
	require.Len(t, out.Fields["warnings"].GetListValue().GetValues(), 1)

	_, err = h.client.Call(ctx, MethodConvertToGrams, req(t, convert.Object{"amount": 3, "unit": "Becher", "strict": true}))
	requireCode(t, codes.InvalidArgument, err)

	_, err = h.client.Call(ctx, MethodConvertToGrams, req(t, convert.Object{"unit": "g"}))
	requireCode(t, codes.InvalidArgument, err)
}

func TestServer_RequiresToken(t *testing.T) {
	t.Parallel()
	h := startHarness(t)

	_, err := h.client.Call(context.Background(), MethodRecomputeRecipe, req(t, convert.Object{"recipe_id": h.recipe.String()}))
	requireCode(t, codes.Unauthenticated, err)

	bad := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer nope")
	_, err = h.client.Call(bad, MethodListShopping, nil)
	requireCode(t, codes.Unauthenticated, err)

	var unauth int64
	for _, st := range h.metrics.Snapshot() {
		if st.Code == codes.Unauthenticated.String() {
			unauth += st.Count
		}
	}
	require.Equal(t, int64(2), unauth)
}

func TestServer_Recompute(t *testing.T) {
	t.Parallel()
	h := startHarness(t)
	ctx := h.as(t, uuid.Must(uuid.NewV4()))

	out, err := h.client.Call(ctx, MethodRecomputeRecipe, req(t, convert.Object{"recipe_id": h.recipe.String()}))
	require.NoError(t, err)
	require.Equal(t, 207.5, out.Fields["calories"].GetNumberValue())
	require.Equal(t, h.recipe.String(), out.Fields["recipe_id"].GetStringValue())

	_, err = h.client.Call(ctx, MethodRecomputeRecipe, req(t, convert.Object{"recipe_id": "nope"}))
	requireCode(t, codes.InvalidArgument, err)

	a, b := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	h.nutri.done = []uuid.UUID{a, b}
	out, err = h.client.Call(ctx, MethodRecomputeByIngredient, req(t, convert.Object{"ingredient_id": a.String()}))
	require.NoError(t, err)
	require.Len(t, out.Fields["recipe_ids"].GetListValue().GetValues(), 2)
	require.Empty(t, out.Fields["failed"].GetListValue().GetValues())
}

func TestServer_RecomputeErrors(t *testing.T) {
	t.Parallel()
	h := startHarness(t)
	ctx := h.as(t, uuid.Must(uuid.NewV4()))
	ing := req(t, convert.Object{"ingredient_id": uuid.Must(uuid.NewV4()).String()})

	h.nutri.done = []uuid.UUID{h.recipe}
	h.nutri.err = fmt.Errorf("recompute x: %w", errs.ErrNotFound)
	out, err := h.client.Call(ctx, MethodRecomputeByIngredient, ing)
	require.NoError(t, err)
	require.Len(t, out.Fields["recipe_ids"].GetListValue().GetValues(), 1)
	require.Len(t, out.Fields["failed"].GetListValue().GetValues(), 1)

	// Every recipe failed: nothing written.
	h.nutri.done = make([]uuid.UUID, 0, 2)
	h.nutri.err = errors.Join(
		fmt.Errorf("recompute a: %w", errs.ErrNotFound),
		fmt.Errorf("recompute b: %w", errs.ErrNotFound))
	_, err = h.client.Call(ctx, MethodRecomputeByIngredient, ing)
	requireCode(t, codes.NotFound, err)

	h.nutri.done = nil
	h.nutri.err = fmt.Errorf("recompute x: %w", errs.ErrNotFound)
	_, err = h.client.Call(ctx, MethodRecomputeByIngredient, ing)
	requireCode(t, codes.NotFound, err)

	_, err = h.client.Call(ctx, MethodRecomputeRecipe, req(t, convert.Object{"recipe_id": h.recipe.String()}))
	requireCode(t, codes.NotFound, err)
}

func TestServer_IngredientAdmin(t *testing.T) {
	t.Parallel()
	h := startHarness(t)
	ctx := h.as(t, uuid.Must(uuid.NewV4()))
	ingID := uuid.Must(uuid.NewV4())
	h.nutri.done = []uuid.UUID{h.recipe}

	out, err := h.client.Call(ctx, MethodUpdateIngredient, req(t, convert.Object{
		"id":          ingID.String(),
		"name":        "Oats",
		"nutrition":   convert.Object{"calories": 372, "protein": 13.5},
		"conversions": convert.Object{"grams_per_cup": 90},
	}))
	require.NoError(t, err)
	require.Len(t, out.Fields["recipe_ids"].GetListValue().GetValues(), 1)
	require.NotNil(t, h.nutri.ing)
	require.Equal(t, "Oats", h.nutri.ing.Name)
	require.Equal(t, 372.0, *h.nutri.ing.Nutrition.Calories)
	require.Nil(t, h.nutri.ing.Nutrition.Fat)
	require.Equal(t, 90.0, *h.nutri.ing.Conversions.GramsPerCup)

	_, err = h.client.Call(ctx, MethodUpdateIngredient, req(t, convert.Object{
		"id": ingID.String(), "nutrition": convert.Object{"calories": "lots"},
	}))
	requireCode(t, codes.InvalidArgument, err)

	out, err = h.client.Call(ctx, MethodDeleteIngredient, req(t, convert.Object{"ingredient_id": ingID.String()}))
	require.NoError(t, err)
	require.Len(t, out.Fields["recipe_ids"].GetListValue().GetValues(), 1)

	out, err = h.client.Call(ctx, MethodSetRecipeIngredients, req(t, convert.Object{
		"recipe_id": h.recipe.String(),
		"items": []any{
			convert.Object{"ingredient_id": ingID.String(), "amount": 1, "unit": "cup"},
		},
	}))
	require.NoError(t, err)
	require.Equal(t, 175.0, out.Fields["total_grams"].GetNumberValue())
	require.Len(t, h.nutri.items, 1)
	require.Equal(t, "cup", h.nutri.items[0].Unit)

	_, err = h.client.Call(ctx, MethodSetRecipeIngredients, req(t, convert.Object{
		"recipe_id": h.recipe.String(), "items": []any{"oats"},
	}))
	requireCode(t, codes.InvalidArgument, err)

	out, err = h.client.Call(ctx, MethodGetRecipeNutrition, req(t, convert.Object{"recipe_id": h.recipe.String()}))
	require.NoError(t, err)
	require.Equal(t, 207.5, out.Fields["calories"].GetNumberValue())

	h.nutri.err = errs.ErrNotFound
	_, err = h.client.Call(ctx, MethodGetRecipeNutrition, req(t, convert.Object{"recipe_id": h.recipe.String()}))
	requireCode(t, codes.NotFound, err)
}

func TestServer_SuggestSlot(t *testing.T) {
	t.Parallel()
	h := startHarness(t)
	ctx := h.as(t, uuid.Must(uuid.NewV4()))
	plan := uuid.Must(uuid.NewV4()).String()

	out, err := h.client.Call(ctx, MethodSuggestSlot, req(t, convert.Object{"plan_id": plan, "slot": "breakfast", "assist": true}))
	require.NoError(t, err)
	slots := out.Fields["slots"].GetListValue().GetValues()
	require.Len(t, slots, 1)
	first := slots[0].GetStructValue()
	require.Equal(t, "breakfast", first.Fields["slot"].GetStringValue())
	require.Contains(t, first.Fields["context"].GetStringValue(), "Quark bowl")
	match := first.Fields["matches"].GetListValue().GetValues()[0].GetStructValue()
	require.Equal(t, h.recipe.String(), match.Fields["recipe_id"].GetStringValue())
	require.Equal(t, "OK", first.Fields["assistant"].GetStructValue().Fields["status"].GetStringValue())

	out, err = h.client.Call(ctx, MethodSuggestSlot, req(t, convert.Object{"plan_id": plan}))
	require.NoError(t, err)
	require.Len(t, out.Fields["slots"].GetListValue().GetValues(), 2)
	require.NotContains(t, out.Fields["slots"].GetListValue().GetValues()[0].GetStructValue().Fields, "assistant")

	out, err = h.client.Call(ctx, MethodSuggestSlot, req(t, convert.Object{"plan_id": plan, "slot": "snack", "assist": true}))
	require.NoError(t, err)
	snack := out.Fields["slots"].GetListValue().GetValues()[0].GetStructValue()
	require.Empty(t, snack.Fields["matches"].GetListValue().GetValues())
	require.NotContains(t, snack.Fields, "assistant")

	_, err = h.client.Call(ctx, MethodSuggestSlot, req(t, convert.Object{"plan_id": plan, "slot": "dinner"}))
	requireCode(t, codes.NotFound, err)

	_, err = h.client.Call(ctx, MethodSuggestSlot, req(t, convert.Object{"plan_id": plan, "limit": 1.5}))
	requireCode(t, codes.InvalidArgument, err)
}

func TestServer_Content(t *testing.T) {
	t.Parallel()
	h := startHarness(t)
	opt := uuid.Must(uuid.NewV4())

	out, err := h.client.Call(context.Background(), MethodResolveAssignments, req(t, convert.Object{
		"path_id": uuid.Must(uuid.NewV4()).String(), "week": 3,
		"selected_option_ids": []any{opt.String()}, "kind": "training",
	}))
	require.NoError(t, err)
	require.Equal(t, 3.0, out.Fields["week"].GetNumberValue())
	require.Len(t, out.Fields["assignments"].GetListValue().GetValues(), 1)
	require.Equal(t, []uuid.UUID{opt}, h.content.gotSelected)
	require.Equal(t, model.KindTraining, *h.content.gotKind)

	_, err = h.client.Call(context.Background(), MethodResolveAssignments, req(t, convert.Object{
		"path_id": uuid.Must(uuid.NewV4()).String(), "kind": "recipes",
	}))
	requireCode(t, codes.InvalidArgument, err)

	user := uuid.Must(uuid.NewV4())
	out, err = h.client.Call(h.as(t, user), MethodMyContent, nil)
	require.NoError(t, err)
	require.Equal(t, 2.0, out.Fields["week"].GetNumberValue())
	require.Equal(t, user.String(), out.Fields["enrollment"].GetStructValue().Fields["user_id"].GetStringValue())
	require.Len(t, out.Fields["assignments"].GetListValue().GetValues(), 2)
	byKind := out.Fields["by_kind"].GetStructValue().Fields
	require.Len(t, byKind["TRAINING"].GetListValue().GetValues(), 1)
	require.Empty(t, byKind["NUTRITION"].GetListValue().GetValues())
	require.Len(t, byKind["INFO"].GetListValue().GetValues(), 1)
}

func TestServer_Enrollment(t *testing.T) {
	t.Parallel()
	h := startHarness(t)
	owner := uuid.Must(uuid.NewV4())
	ctx := h.as(t, owner)
	vt, vo := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

	out, err := h.client.Call(ctx, MethodCreateEnrollment, req(t, convert.Object{
		"path_id":    uuid.Must(uuid.NewV4()).String(),
		"start_date": "2026-04-06",
		"variants":   []any{convert.Object{"variant_type_id": vt.String(), "variant_option_id": vo.String()}},
	}))
	require.NoError(t, err)
	require.Equal(t, "2026-04-06", out.Fields["start_date"].GetStringValue())
	require.Equal(t, owner.String(), out.Fields["user_id"].GetStringValue())
	id := out.Fields["id"].GetStringValue()

	other := uuid.Must(uuid.NewV4())
	update := req(t, convert.Object{
		"enrollment_id": id,
		"variants":      []any{convert.Object{"variant_type_id": vt.String(), "variant_option_id": other.String()}},
	})
	out, err = h.client.Call(ctx, MethodUpdateEnrollmentVariants, update)
	require.NoError(t, err)
	variant := out.Fields["variants"].GetListValue().GetValues()[0].GetStructValue()
	require.Equal(t, other.String(), variant.Fields["variant_option_id"].GetStringValue())

	_, err = h.client.Call(h.as(t, uuid.Must(uuid.NewV4())), MethodUpdateEnrollmentVariants, update)
	requireCode(t, codes.NotFound, err)

	h.enroll.locked = true
	_, err = h.client.Call(ctx, MethodUpdateEnrollmentVariants, update)
	requireCode(t, codes.FailedPrecondition, err)
}

func TestServer_Shopping(t *testing.T) {
	t.Parallel()
	h := startHarness(t)
	user := uuid.Must(uuid.NewV4())
	ctx := h.as(t, user)

	out, err := h.client.Call(ctx, MethodAddRecipeToShopping, req(t, convert.Object{"recipe_id": h.recipe.String()}))
	require.NoError(t, err)
	require.Equal(t, "2026-03-09", out.Fields["week_start"].GetStringValue())
	require.Len(t, out.Fields["items"].GetListValue().GetValues(), 1)
	require.Equal(t, user, h.shop.gotUser)
	require.Equal(t, fixedNow, h.shop.gotDay)

	out, err = h.client.Call(ctx, MethodListShopping, req(t, convert.Object{"day": "2026-03-22"}))
	require.NoError(t, err)
	require.Equal(t, "2026-03-16", out.Fields["week_start"].GetStringValue())
	require.Empty(t, out.Fields["items"].GetListValue().GetValues())

	_, err = h.client.Call(ctx, MethodListShopping, req(t, convert.Object{"day": "soon"}))
	requireCode(t, codes.InvalidArgument, err)
}

func Test_recomputed(t *testing.T) {
	t.Parallel()
	a := uuid.Must(uuid.NewV4())

	out, err := recomputed("op", []uuid.UUID{}, nil)
	require.NoError(t, err)
	require.Empty(t, out.Fields["recipe_ids"].GetListValue().GetValues())

	out, err = recomputed("op", []uuid.UUID{a}, errors.Join(errors.New("r2 failed")))
	require.NoError(t, err)
	require.Equal(t, "r2 failed", out.Fields["failed"].GetListValue().GetValues()[0].GetStringValue())

	_, err = recomputed("op", make([]uuid.UUID, 0, 2), errors.Join(errors.New("r1 failed"), errors.New("r2 failed")))
	requireCode(t, codes.Internal, err)
}

func Test_toStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want codes.Code
	}{
		{errs.ErrNotFound, codes.NotFound},
		{fmt.Errorf("wrap: %w", errs.ErrVariantsLocked), codes.FailedPrecondition},
		{errs.ErrUnsupportedUnit, codes.InvalidArgument},
		{errs.ErrInvalidArgument, codes.InvalidArgument},
		{errs.ErrAlreadyExists, codes.AlreadyExists},
		{errs.ErrUnauthorized, codes.Unauthenticated},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{fmt.Errorf("boom"), codes.Internal},
	}
	for _, tc := range cases {
		requireCode(t, tc.want, toStatus("op", tc.err))
	}
}
