package gamma

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultParams(), nil)
	if err != nil {
		t.Fatalf("unexpected error creating engine: %v", err)
	}
	return engine
}

func TestAnalyze_DocumentedExample(t *testing.T) {
	rows := []ContractRow{
		{Strike: 100, Type: Put, OpenInterest: 10, Gamma: 0.01},
		{Strike: 100, Type: Call, OpenInterest: 5, Gamma: 0.01},
		{Strike: 110, Type: Call, OpenInterest: 20, Gamma: 0.02},
	}

	result, err := newTestEngine(t).Analyze(rows, 105)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Strikes) != 2 {
		t.Fatalf("expected 2 strikes, got %d", len(result.Strikes))
	}

	at100 := result.Strikes[0]
	if at100.Strike != 100 {
		t.Fatalf("expected first strike 100, got %v", at100.Strike)
	}
	if !approxEqual(at100.DealerGammaPut, -10) {
		t.Errorf("expected put gamma -10 at 100, got %v", at100.DealerGammaPut)
	}
	if !approxEqual(at100.DealerGammaCall, -5) {
		t.Errorf("expected call gamma -5 at 100, got %v", at100.DealerGammaCall)
	}

	at110 := result.Strikes[1]
	if !approxEqual(at110.DealerGammaCall, -40) {
		t.Errorf("expected call gamma -40 at 110, got %v", at110.DealerGammaCall)
	}

	if result.Levels.PutWall == nil || result.Levels.PutWall.Strike != 100 {
		t.Errorf("expected put wall at 100, got %+v", result.Levels.PutWall)
	}
	if result.Levels.CallWall == nil || result.Levels.CallWall.Strike != 110 {
		t.Errorf("expected call wall at 110, got %+v", result.Levels.CallWall)
	}
	if result.Levels.GammaFlip != nil {
		t.Errorf("expected no gamma flip in [103.95, 106.05], got %+v", result.Levels.GammaFlip)
	}
	if result.Regime != RegimeNeutral {
		t.Errorf("expected neutral regime, got %s", result.Regime)
	}

	// walls bracket the reference price when data spans both sides
	if result.Levels.PutWall.Strike > result.ReferencePrice || result.Levels.CallWall.Strike < result.ReferencePrice {
		t.Errorf("walls do not bracket price: put %v, price %v, call %v",
			result.Levels.PutWall.Strike, result.ReferencePrice, result.Levels.CallWall.Strike)
	}
}

func TestAnalyze_NetGammaIsSumOfSides(t *testing.T) {
	rows := []ContractRow{
		{Strike: 95, Type: Put, OpenInterest: 300, Gamma: 0.013},
		{Strike: 95, Type: Call, OpenInterest: 120, Gamma: 0.004},
		{Strike: 100, Type: Call, OpenInterest: 800, Gamma: 0.021},
		{Strike: 100, Type: Put, OpenInterest: 650, Gamma: 0.019},
		{Strike: 100, Type: Put, OpenInterest: 10, Gamma: 0.019},
		{Strike: 105, Type: Put, OpenInterest: 75, Gamma: 0.006},
	}

	result, err := newTestEngine(t).Analyze(rows, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range result.Strikes {
		if s.NetGamma != s.DealerGammaCall+s.DealerGammaPut {
			t.Errorf("strike %v: net %v != call %v + put %v", s.Strike, s.NetGamma, s.DealerGammaCall, s.DealerGammaPut)
		}
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	rows := []ContractRow{
		{Strike: 99, Type: Call, Volume: 40, OpenInterest: 100, Gamma: 0.03},
		{Strike: 99, Type: Put, Volume: 25, OpenInterest: 90, Gamma: 0.025},
		{Strike: 100, Type: Call, Volume: 70, OpenInterest: 300, Gamma: 0.04},
		{Strike: 100, Type: Put, Volume: 65, OpenInterest: 310, Gamma: 0.04},
		{Strike: 101, Type: Call, Volume: 30, OpenInterest: 150, Gamma: 0.03},
	}

	engine := newTestEngine(t)
	first, err := engine.Analyze(rows, 100.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.Analyze(rows, 100.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated analysis differs:\n%+v\n%+v", first, second)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("serialized results differ:\n%s\n%s", a, b)
	}
}

func TestAnalyze_InputOrderDoesNotMatter(t *testing.T) {
	rows := []ContractRow{
		{Strike: 110, Type: Call, Volume: 8, OpenInterest: 4, Gamma: 0.5},
		{Strike: 100, Type: Put, Volume: 2, OpenInterest: 8, Gamma: 0.25},
		{Strike: 105, Type: Call, Volume: 6, OpenInterest: 2, Gamma: 0.5},
		{Strike: 100, Type: Call, Volume: 4, OpenInterest: 2, Gamma: 0.25},
	}
	reversed := make([]ContractRow, len(rows))
	for i, r := range rows {
		reversed[len(rows)-1-i] = r
	}

	engine := newTestEngine(t)
	a, err := engine.Analyze(rows, 104)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := engine.Analyze(reversed, 104)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Errorf("result depends on input order:\n%+v\n%+v", a, b)
	}
}

func TestAnalyze_EmptyInput(t *testing.T) {
	result, err := newTestEngine(t).Analyze(nil, 5850)
	if err != nil {
		t.Fatalf("empty input should not error, got %v", err)
	}

	if len(result.Strikes) != 0 {
		t.Errorf("expected no strikes, got %d", len(result.Strikes))
	}
	if result.Levels.PutWall != nil || result.Levels.CallWall != nil || result.Levels.GammaFlip != nil {
		t.Errorf("expected no levels, got %+v", result.Levels)
	}
	if len(result.Ranked) != 0 {
		t.Errorf("expected empty ranking, got %d", len(result.Ranked))
	}
	if result.Regime != RegimeNeutral {
		t.Errorf("expected neutral regime, got %s", result.Regime)
	}
}

func TestAnalyze_InvalidReferencePrice(t *testing.T) {
	engine := newTestEngine(t)
	rows := []ContractRow{{Strike: 100, Type: Call, OpenInterest: 1, Gamma: 0.1}}

	for _, price := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := engine.Analyze(rows, price)
		if !errors.Is(err, ErrInvalidReferencePrice) {
			t.Errorf("price %v: expected ErrInvalidReferencePrice, got %v", price, err)
		}
	}
}

func TestNewEngine_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"negative top k", Params{ContractMultiplier: 100, FlipWindowPct: 0.01, TopK: -1}},
		{"zero multiplier", Params{ContractMultiplier: 0, FlipWindowPct: 0.01, TopK: 5}},
		{"nan multiplier", Params{ContractMultiplier: math.NaN(), FlipWindowPct: 0.01, TopK: 5}},
		{"negative window", Params{ContractMultiplier: 100, FlipWindowPct: -0.01, TopK: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.params, nil)
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestNewEngine_ZeroTopKIsValid(t *testing.T) {
	params := DefaultParams()
	params.TopK = 0

	engine, err := NewEngine(params, nil)
	if err != nil {
		t.Fatalf("top k 0 should be valid, got %v", err)
	}

	rows := []ContractRow{{Strike: 100, Type: Call, Volume: 10, OpenInterest: 1, Gamma: 0.1}}
	result, err := engine.Analyze(rows, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Ranked) != 0 {
		t.Errorf("expected empty ranking, got %d", len(result.Ranked))
	}
}

func TestAnalyze_CustomMultiplier(t *testing.T) {
	params := DefaultParams()
	params.ContractMultiplier = 10

	engine, err := NewEngine(params, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := engine.Analyze([]ContractRow{{Strike: 50, Type: Put, OpenInterest: 4, Gamma: 0.5}}, 55)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Strikes[0].DealerGammaPut; got != -20 {
		t.Errorf("expected -20 with multiplier 10, got %v", got)
	}
}

func TestAnalyze_ConcurrentUse(t *testing.T) {
	engine := newTestEngine(t)
	rows := []ContractRow{
		{Strike: 99, Type: Put, Volume: 20, OpenInterest: 100, Gamma: 0.03},
		{Strike: 100, Type: Call, Volume: 50, OpenInterest: 300, Gamma: 0.04},
		{Strike: 101, Type: Call, Volume: 30, OpenInterest: 150, Gamma: 0.03},
	}

	want, err := engine.Analyze(rows, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := engine.Analyze(rows, 100)
			if err != nil {
				errs <- err
				return
			}
			if !reflect.DeepEqual(got, want) {
				errs <- errors.New("concurrent result differs")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
