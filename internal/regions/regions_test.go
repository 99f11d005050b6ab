package regions

import "testing"

func TestEveryAreaBelongsToExactlyOneRegion(t *testing.T) {
	seen := map[string]string{}
	for _, region := range Codes() {
		areas := Areas(region)
		if len(areas) == 0 {
			t.Fatalf("region %s has no areas", region)
		}
		for _, area := range areas {
			if owner, dup := seen[area]; dup {
				t.Fatalf("area %s listed in both %s and %s", area, owner, region)
			}
			seen[area] = region
			if got, ok := RegionOf(area); !ok || got != region {
				t.Fatalf("RegionOf(%s) = %q, %v; want %q", area, got, ok, region)
			}
		}
	}
	if len(seen) != len(AllAreas()) {
		t.Fatalf("AllAreas returned %d areas, table has %d", len(AllAreas()), len(seen))
	}
}

func TestAreasReturnsCopy(t *testing.T) {
	areas := Areas("SW")
	areas[0] = "ZZ"
	if Areas("SW")[0] != "CA" {
		t.Fatal("Areas leaked the static table")
	}
	if Areas("MARS") != nil {
		t.Fatal("expected nil for unknown region")
	}
	if _, ok := RegionOf("ZZ"); ok {
		t.Fatal("expected unknown area")
	}
}
