package flows

import (
	"context"
	"errors"
	"testing"

	"github.com/minitask/client/internal/domain/entities"
)

func TestPickerCascade(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	p := NewLocationPicker(api)

	if got := p.Options(entities.LevelDistrict); len(got) != 0 {
		t.Fatalf("districts offered before any state: %v", got)
	}
	if err := p.LoadStates(ctx); err != nil {
		t.Fatalf("LoadStates() failed: %v", err)
	}
	if n := api.count("districts"); n != 0 {
		t.Fatalf("districts fetched before a state was selected")
	}

	mustSelect(t, p, entities.LevelState, "st-mh")
	mustSelect(t, p, entities.LevelDistrict, "ds-pune")
	mustSelect(t, p, entities.LevelCity, "ct-baner")

	state, district, city := p.Selection()
	if state != "st-mh" || district != "ds-pune" || city != "ct-baner" {
		t.Fatalf("Selection() = %s/%s/%s", state, district, city)
	}

	// A new district unsets the city.
	mustSelect(t, p, entities.LevelDistrict, "ds-mumbai")
	if city := p.Selected(entities.LevelCity); city != "" {
		t.Fatalf("city = %q after district change, want unset", city)
	}
	if got := names(p.Options(entities.LevelCity)); got != "Andheri,Bandra" {
		t.Fatalf("city options = %s", got)
	}

	// A new state unsets district and city.
	mustSelect(t, p, entities.LevelCity, "ct-andheri")
	mustSelect(t, p, entities.LevelState, "st-ka")
	if d, c := p.Selected(entities.LevelDistrict), p.Selected(entities.LevelCity); d != "" || c != "" {
		t.Fatalf("district/city = %q/%q after state change, want unset", d, c)
	}
	if got := p.Options(entities.LevelCity); len(got) != 0 {
		t.Fatalf("city options kept after state change: %v", got)
	}
	if got := names(p.Options(entities.LevelDistrict)); got != "Bengaluru Urban,Mysuru" {
		t.Fatalf("district options = %s", got)
	}
}

func TestPickerRejectsUnofferedOption(t *testing.T) {
	ctx := context.Background()
	p := NewLocationPicker(&fakeAPI{})
	if err := p.LoadStates(ctx); err != nil {
		t.Fatalf("LoadStates() failed: %v", err)
	}

	// Districts are not loaded until a state is picked.
	if err := p.Select(ctx, entities.LevelDistrict, "ds-pune"); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("Select(district) error = %v, want ErrUnknownOption", err)
	}
	mustSelect(t, p, entities.LevelState, "st-mh")
	if err := p.Select(ctx, entities.LevelDistrict, "ds-blr"); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("Select(foreign district) error = %v, want ErrUnknownOption", err)
	}
}

func TestPickerDropsStaleChildren(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	api := &fakeAPI{}
	api.districts = func(_ context.Context, id entities.ID) ([]entities.LocationNode, error) {
		if id == "st-mh" {
			started <- struct{}{}
			<-release
		}
		return seedNodes(entities.LevelDistrict, id), nil
	}
	p := NewLocationPicker(api)
	if err := p.LoadStates(ctx); err != nil {
		t.Fatalf("LoadStates() failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- p.Select(ctx, entities.LevelState, "st-mh") }()
	<-started

	mustSelect(t, p, entities.LevelState, "st-gj")
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("slow Select() failed: %v", err)
	}

	if got := names(p.Options(entities.LevelDistrict)); got != "Ahmedabad" {
		t.Fatalf("district options = %s, want the later state's", got)
	}
}

func TestPickerChildFetchFailure(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	api.cities = func(context.Context, entities.ID) ([]entities.LocationNode, error) {
		return nil, &entities.RequestFailedError{Status: 500}
	}
	p := NewLocationPicker(api)
	if err := p.LoadStates(ctx); err != nil {
		t.Fatalf("LoadStates() failed: %v", err)
	}
	mustSelect(t, p, entities.LevelState, "st-mh")

	if err := p.Select(ctx, entities.LevelDistrict, "ds-pune"); !errors.Is(err, entities.ErrRequestFailed) {
		t.Fatalf("Select() error = %v, want request failed", err)
	}
	if got := p.Options(entities.LevelCity); len(got) != 0 {
		t.Fatalf("city options = %v after failed fetch", got)
	}
}

func TestPickerPreset(t *testing.T) {
	p := NewLocationPicker(&fakeAPI{})
	if err := p.Preset(context.Background(), "st-ka", "ds-blr", "ct-whitefield"); err != nil {
		t.Fatalf("Preset() failed: %v", err)
	}
	state, district, city := p.Selection()
	if state != "st-ka" || district != "ds-blr" || city != "ct-whitefield" {
		t.Fatalf("Selection() = %s/%s/%s", state, district, city)
	}
}

func mustSelect(t *testing.T, p *LocationPicker, level entities.LocationLevel, id entities.ID) {
	t.Helper()
	if err := p.Select(context.Background(), level, id); err != nil {
		t.Fatalf("Select(%s, %s) failed: %v", level, id, err)
	}
}

func names(nodes []entities.LocationNode) string {
	var out string
	for i, n := range nodes {
		if i > 0 {
			out += ","
		}
		out += n.Name
	}
	return out
}

func TestPickerInactiveDropsStates(t *testing.T) {
	active := true
	p := NewLocationPicker(&fakeAPI{}, WithActive(func() bool { return active }))
	active = false
	if err := p.LoadStates(context.Background()); err != nil {
		t.Fatalf("LoadStates() failed: %v", err)
	}
	if got := p.Options(entities.LevelState); len(got) != 0 {
		t.Fatalf("inactive picker stored states: %v", got)
	}
}
