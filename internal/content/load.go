package content

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load builds the catalog from a content directory. Each file overrides the
// matching section of the built-in defaults; missing files keep the
// defaults. Passing an empty dir returns the defaults unchanged.
func Load(dir string) (*Store, error) {
	s := Default()
	if dir == "" {
		return s, nil
	}

	var resources struct {
		Resources []ResourceDef `yaml:"resources"`
	}
	if ok, err := readYAML(filepath.Join(dir, "resources.yml"), &resources); err != nil {
		return nil, err
	} else if ok {
		s.Resources = map[string]ResourceDef{}
		for _, rd := range resources.Resources {
			s.Resources[rd.Key] = rd
		}
	}

	var cards struct {
		StartingCard string    `yaml:"starting_card"`
		Cards        []CardDef `yaml:"cards"`
	}
	if ok, err := readYAML(filepath.Join(dir, "cards.yml"), &cards); err != nil {
		return nil, err
	} else if ok {
		s.Cards = map[string]CardDef{}
		for _, cd := range cards.Cards {
			s.Cards[cd.Key] = cd
		}
		if cards.StartingCard != "" {
			s.StartingCard = cards.StartingCard
		}
	}

	var crafts struct {
		Items []RecipeDef `yaml:"items"`
	}
	if ok, err := readYAML(filepath.Join(dir, "crafts.yml"), &crafts); err != nil {
		return nil, err
	} else if ok {
		s.Recipes = map[string]RecipeDef{}
		for _, rc := range crafts.Items {
			if rc.Location == "" {
				rc.Location = "craft_table"
			}
			if rc.OutputQuantity < 1 {
				rc.OutputQuantity = 1
			}
			if rc.RequiredTableLevel < 1 {
				rc.RequiredTableLevel = 1
			}
			s.Recipes[rc.ItemKey] = rc
		}
	}

	var lands struct {
		Lands []LandDef `yaml:"lands"`
	}
	if ok, err := readYAML(filepath.Join(dir, "lands.yml"), &lands); err != nil {
		return nil, err
	} else if ok {
		s.Lands = map[string]LandDef{}
		for _, ld := range lands.Lands {
			s.Lands[ld.Key] = ld
		}
	}

	var levels struct {
		Levels []LevelDef `yaml:"levels"`
	}
	if ok, err := readYAML(filepath.Join(dir, "levels.yml"), &levels); err != nil {
		return nil, err
	} else if ok {
		s.Levels = levels.Levels
	}

	var daily DailyConfig
	if ok, err := readYAML(filepath.Join(dir, "daily.yml"), &daily); err != nil {
		return nil, err
	} else if ok {
		s.Daily = daily
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("content validation: %w", err)
	}
	return s, nil
}

func readYAML(path string, out any) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return true, nil
}
