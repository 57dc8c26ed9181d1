package backpacktf

import (
	"testing"

	"github.com/tf2tools/tf2arb/internal/models"
)

const base = "https://backpack.tf"

func TestStatsURL(t *testing.T) {
	cases := []struct {
		attrs models.ItemAttributes
		want  string
	}{
		{
			models.ItemAttributes{BaseName: "Rocket Launcher", Quality: models.QualityUnique},
			"https://backpack.tf/stats/Unique/Rocket%20Launcher/Tradable/Craftable",
		},
		{
			models.ItemAttributes{BaseName: "Rocket Launcher", Quality: models.QualityStrange},
			"https://backpack.tf/stats/Strange/Rocket%20Launcher/Tradable/Craftable",
		},
		{
			models.ItemAttributes{BaseName: "Rocket Launcher", Quality: models.QualityStrange, Australium: true},
			"https://backpack.tf/stats/Strange/Rocket%20Launcher/Tradable/Craftable/Australium",
		},
		{
			models.ItemAttributes{BaseName: "Rocket Launcher", Quality: models.QualityStrange, Killstreak: models.KillstreakProfessional},
			"https://backpack.tf/stats/Strange/Rocket%20Launcher/Tradable/Craftable?killstreak_tier=3",
		},
	}

	for _, c := range cases {
		if got := StatsURL(base, c.attrs); got != c.want {
			t.Errorf("StatsURL(%+v)\n got %s\nwant %s", c.attrs, got, c.want)
		}
	}
}

func TestClassifiedsURL(t *testing.T) {
	attrs := models.ItemAttributes{
		BaseName:   "Rocket Launcher",
		Quality:    models.QualityStrange,
		Killstreak: models.KillstreakSpecialized,
	}

	want := "https://backpack.tf/classifieds?item=Rocket+Launcher&quality=11&tradable=1&craftable=1&australium=-1&killstreak_tier=2"
	if got := ClassifiedsURL(base, attrs, 1); got != want {
		t.Errorf("ClassifiedsURL page 1\n got %s\nwant %s", got, want)
	}

	if got := ClassifiedsURL(base, attrs, 3); got != want+"&page=3" {
		t.Errorf("ClassifiedsURL page 3 = %s", got)
	}

	attrs.Australium = true
	attrs.Killstreak = models.KillstreakNone
	want = "https://backpack.tf/classifieds?item=Rocket+Launcher&quality=11&tradable=1&craftable=1&australium=1&killstreak_tier=0"
	if got := ClassifiedsURL(base, attrs, 1); got != want {
		t.Errorf("ClassifiedsURL australium\n got %s\nwant %s", got, want)
	}
}
