package adminapi

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Option is one entry of a form dropdown.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Image string `json:"image,omitempty"`
}

type DropdownOptions struct {
	GameTypes   []Option `json:"gameTypes"`
	TeamTypes   []Option `json:"teamTypes"`
	AgeTypes    []Option `json:"ageTypes"`
	SeasonTypes []Option `json:"seasonTypes"`
}

// DropdownOptions loads the four type catalogues used by the team form in
// parallel. Any failure fails the whole call.
func (a *API) DropdownOptions(ctx context.Context) (*DropdownOptions, error) {
	opts := &DropdownOptions{}
	targets := map[string]*[]Option{
		GameTypes:   &opts.GameTypes,
		TeamTypes:   &opts.TeamTypes,
		AgeTypes:    &opts.AgeTypes,
		SeasonTypes: &opts.SeasonTypes,
	}

	g, gctx := errgroup.WithContext(ctx)
	for name, dst := range targets {
		g.Go(func() error {
			res, err := a.Resource(name)
			if err != nil {
				return err
			}
			items, err := res.ListCatalog(gctx)
			if err != nil {
				return err
			}
			out := make([]Option, 0, len(items))
			for _, it := range items {
				out = append(out, Option{Value: it.ID, Label: it.Title, Image: it.Image})
			}
			*dst = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Summary holds the dashboard totals.
type Summary struct {
	Users  int `json:"users"`
	Teams  int `json:"teams"`
	Events int `json:"events"`
}

// Summary reads the totals from the pagination of one-item listings.
func (a *API) Summary(ctx context.Context) (*Summary, error) {
	s := &Summary{}
	one := PageQuery{Page: 1, Limit: 1}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		env, err := a.ListUsers(gctx, UserQuery{PageQuery: one})
		if err != nil {
			return err
		}
		s.Users = total(env.Pagination, len(env.Data))
		return nil
	})
	for name, dst := range map[string]*int{Teams: &s.Teams, Events: &s.Events} {
		g.Go(func() error {
			res, err := a.Resource(name)
			if err != nil {
				return err
			}
			env, err := res.List(gctx, one)
			if err != nil {
				return err
			}
			*dst = total(env.Pagination, 0)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

func total(p *Pagination, fallback int) int {
	if p == nil {
		return fallback
	}
	return p.TotalItems
}
