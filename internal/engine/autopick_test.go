package engine

import (
	"errors"
	"testing"
)

func TestSelectBestAvailable(t *testing.T) {
	table := DefaultConstraints()

	cases := []struct {
		name      string
		catalog   Catalog
		roster    Roster
		claimed   []ClaimedAsset
		wantCat   Category
		wantAsset int64
		wantErr   error
	}{
		{
			name: "highest score wins across categories",
			catalog: Catalog{
				CategoryStrain: {{ID: 1, Score: 50}},
				CategoryBrand:  {{ID: 9, Score: 80}},
			},
			roster:    Roster{},
			wantCat:   CategoryBrand,
			wantAsset: 9,
		},
		{
			name: "score tie breaks to lowest id",
			catalog: Catalog{
				CategoryStrain: {{ID: 7, Score: 60}, {ID: 3, Score: 60}},
			},
			roster:    Roster{},
			wantCat:   CategoryStrain,
			wantAsset: 3,
		},
		{
			name: "claimed assets are skipped",
			catalog: Catalog{
				CategoryStrain: {{ID: 1, Score: 90}, {ID: 2, Score: 10}},
			},
			roster:    Roster{},
			claimed:   []ClaimedAsset{{CategoryStrain, 1}},
			wantCat:   CategoryStrain,
			wantAsset: 2,
		},
		{
			name: "full category ignored even with best score",
			catalog: Catalog{
				CategoryBrand:  {{ID: 1, Score: 99}},
				CategoryStrain: {{ID: 2, Score: 5}},
			},
			// Brand dedicated + flex already consumed.
			roster:    Roster{CategoryBrand: 2},
			wantCat:   CategoryStrain,
			wantAsset: 2,
		},
		{
			name: "exhausted pool is fatal",
			catalog: Catalog{
				CategoryStrain: {{ID: 1, Score: 10}},
			},
			roster:  Roster{},
			claimed: []ClaimedAsset{{CategoryStrain, 1}},
			wantErr: ErrPoolExhausted,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewTracker()
			for _, c := range tc.claimed {
				tr.TryClaim(c.Category, c.AssetID)
			}

			cat, asset, err := SelectBestAvailable(tc.roster, tc.catalog, tr, table)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if cat != tc.wantCat || asset.ID != tc.wantAsset {
				t.Fatalf("got (%s, %d), want (%s, %d)", cat, asset.ID, tc.wantCat, tc.wantAsset)
			}
		})
	}
}
