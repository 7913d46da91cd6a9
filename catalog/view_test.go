package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleItems() []Item {
	return []Item{
		{ID: Num(1), DesignID: Num(10), Name: "Laser", BonusType: "Attack", BonusValue: Num(10), SubType: "EquipmentWeapon", Rarity: "Epic"},
		{ID: Num(2), DesignID: Num(11), Name: "Beam", BonusType: "Attack", BonusValue: Num(30), Quantity: Num(3)},
		{ID: Num(3), DesignID: Num(12), Name: "Plating", BonusType: "Armor", BonusValue: Num(5), SubType: "Equipment Body"},
		{ID: Num(4), DesignID: Num(13), Name: "Scrap"},
	}
}

func names(items []Item, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = items[j].Name
	}
	return out
}

func TestFilter_NameAndBonus(t *testing.T) {
	items := sampleItems()
	assert.Equal(t, []string{"Laser", "Beam"}, names(items, Filter(items, "attack")))
	assert.Equal(t, []string{"Plating"}, names(items, Filter(items, "PLAT")))
	assert.Equal(t, []string{"Beam"}, names(items, Filter(items, "+30")))
	assert.Len(t, Filter(items, ""), 4)
	assert.Empty(t, Filter(items, "nothing"))
}

func TestNextSort_Cycle(t *testing.T) {
	s := NextSort(SortState{}, ColumnName)
	assert.Equal(t, SortState{Key: ColumnName, Dir: Asc}, s)
	s = NextSort(s, ColumnName)
	assert.Equal(t, SortState{Key: ColumnName, Dir: Desc}, s)
	s = NextSort(s, ColumnName)
	assert.Equal(t, "", s.Key)
	assert.Equal(t, SortState{Key: ColumnBonus, Dir: Asc}, NextSort(SortState{Key: ColumnName, Dir: Desc}, ColumnBonus))
}

func TestSort_ByName(t *testing.T) {
	items := sampleItems()
	idx := Filter(items, "")
	Sort(items, idx, SortState{Key: ColumnName, Dir: Asc})
	assert.Equal(t, []string{"Beam", "Laser", "Plating", "Scrap"}, names(items, idx))
	Sort(items, idx, SortState{Key: ColumnName, Dir: Desc})
	assert.Equal(t, []string{"Scrap", "Plating", "Laser", "Beam"}, names(items, idx))
}

func TestSort_BonusTypeThenValueDescending(t *testing.T) {
	items := sampleItems()
	idx := Filter(items, "")
	Sort(items, idx, SortState{Key: ColumnBonus, Dir: Asc})
	assert.Equal(t, []string{"Scrap", "Plating", "Beam", "Laser"}, names(items, idx))
}

func TestSort_Unsorted(t *testing.T) {
	items := sampleItems()
	idx := []int{3, 1, 2, 0}
	Sort(items, idx, SortState{})
	assert.Equal(t, []int{3, 1, 2, 0}, idx)
}

func TestCompareValues(t *testing.T) {
	assert.Equal(t, -1, CompareValues("9", "10"))
	assert.Equal(t, 1, CompareValues("b", "a"))
	assert.Equal(t, 0, CompareValues("2.0", "2"))
	assert.Equal(t, -1, CompareValues("10", "9a"))
}

func TestDisplayHelpers(t *testing.T) {
	items := sampleItems()
	assert.Equal(t, "Beam x3", items[1].Label())
	assert.Equal(t, "Laser", items[0].Label())
	assert.Equal(t, "Weapon", items[0].SubTypeLabel())
	assert.Equal(t, "Body", items[2].SubTypeLabel())
	assert.Equal(t, "rarity-epic", items[0].RarityClass())
	assert.Equal(t, "rarity-common", items[3].RarityClass())
	assert.Equal(t, "", items[3].BonusLabel())
	assert.Equal(t, "https://pixyship.com/item/10", items[0].DetailURL())
}

func TestHighlight(t *testing.T) {
	segs := Highlight("Laser Beam laser", "LASER")
	assert.Equal(t, []Segment{
		{Text: "Laser", Match: true},
		{Text: " Beam "},
		{Text: "laser", Match: true},
	}, segs)

	assert.Equal(t, []Segment{{Text: "a+b"}}, Highlight("a+b", ""))
	assert.Equal(t, []Segment{{Text: "a"}, {Text: "+", Match: true}, {Text: "b"}}, Highlight("a+b", "+"))
}
