package rules

import (
	"github.com/nstehr/grimoire/config"
	"github.com/nstehr/grimoire/model"
)

// petForm carries the summon spell and the display IDs of a demon in its
// normal and Grimoire of Supremacy ("fel") forms.
type petForm struct {
	summon model.Spell
	normal int
	fel    int
}

var petForms = map[config.Pet]petForm{
	config.PetImp:        {model.SummonImp, 4449, 44152},
	config.PetVoidwalker: {model.SummonVoidwalker, 1132, 44542},
	config.PetSuccubus:   {model.SummonSuccubus, 4162, 44610},
	config.PetFelhunter:  {model.SummonFelhunter, 850, 44153},
	config.PetFelguard:   {model.SummonFelguard, 61493, 44609},
	config.PetInfernal:   {model.SummonInfernal, 169, 51650},
	config.PetDoomguard:  {model.SummonDoomguard, 1912, 22809},
}

// activePet identifies the summoned demon from its display ID.
func activePet(s model.Snapshot) (config.Pet, bool) {
	if !s.HasAlivePet() {
		return "", false
	}
	for pet, f := range petForms {
		if s.Pet.DisplayID == f.normal || s.Pet.DisplayID == f.fel {
			return pet, true
		}
	}
	return "", false
}

// wantedPet applies the auto-selection order when the setting is auto.
func wantedPet(s model.Snapshot, st config.Settings) (config.Pet, bool) {
	switch st.SelectedPet {
	case config.PetManual:
		return "", false
	case config.PetAuto:
	default:
		return st.SelectedPet, true
	}
	betterPets := s.HasSpell(model.SummonFelImp)
	switch {
	case s.HasSpell(model.DemonicServitude):
		return config.PetInfernal, true
	case s.HasSpell(model.SummonFelguard):
		return config.PetFelguard, true
	case s.Bot == "PvP" && s.HasSpell(model.SummonFelhunter):
		return config.PetFelhunter, true
	case s.HasSpell(model.SummonVoidwalker) && s.GroupSize <= 1:
		return config.PetVoidwalker, true
	case betterPets && s.HasSpell(model.SummonFelhunter):
		return config.PetFelhunter, true
	case s.HasSpell(model.SummonImp):
		return config.PetImp, true
	}
	return "", false
}

// wantedPetMissing is true when no pet is out or the wrong one is.
func wantedPetMissing(s model.Snapshot, st config.Settings) bool {
	pet, ok := wantedPet(s, st)
	if !ok {
		return false
	}
	if !s.HasAlivePet() {
		return true
	}
	f := petForms[pet]
	want := f.normal
	if s.HasSpell(model.SummonFelImp) {
		want = f.fel
	}
	return s.Pet.DisplayID != want
}

func resolveSummon(env RuleEnv) (model.Spell, bool) {
	pet, ok := wantedPet(env.State, env.Settings)
	if !ok {
		return "", false
	}
	return petForms[pet].summon, true
}

var grimoireSpells = map[config.GrimoirePet]model.Spell{
	config.GrimoireImp:        model.GrimoireImp,
	config.GrimoireVoidwalker: model.GrimoireVoidwalker,
	config.GrimoireSuccubus:   model.GrimoireSuccubus,
	config.GrimoireFelhunter:  model.GrimoireFelhunter,
	config.GrimoireInfernal:   model.GrimoireInfernal,
	config.GrimoireDoomguard:  model.GrimoireDoomguard,
}

// resolveGrimoire maps the Grimoire of Service setting to a spell. "main"
// mirrors the permanent pet; with auto or manual pets it interrupts with a
// Felhunter when the target is casting and brings a Doomguard otherwise.
func resolveGrimoire(env RuleEnv) (model.Spell, bool) {
	g := env.Settings.SelectedGrimoirePet
	if g == config.GrimoireMain {
		switch env.Settings.SelectedPet {
		case config.PetAuto, config.PetManual:
			g = config.GrimoireDoomguard
			if env.State.Target != nil && env.State.Target.IsCastingAndInterruptible() {
				g = config.GrimoireFelhunter
			}
		case config.PetFelguard:
			return "", false
		default:
			g = config.GrimoirePet(env.Settings.SelectedPet)
		}
	}
	sp, ok := grimoireSpells[g]
	return sp, ok
}

func resolveInfernal(env RuleEnv) (model.Spell, bool) {
	if env.State.HasSpell(model.GrimoireOfSupremacy) {
		return model.SummonAbyssal, true
	}
	return model.SummonInfernal, true
}

func resolveDoomguard(env RuleEnv) (model.Spell, bool) {
	if env.State.HasSpell(model.GrimoireOfSupremacy) {
		return model.SummonTerrorguard, true
	}
	return model.SummonDoomguard, true
}

// variant picks the Metamorphosis form of a spell while morphed.
func variant(normal, morphed model.Spell) func(RuleEnv) (model.Spell, bool) {
	return func(env RuleEnv) (model.Spell, bool) {
		if env.Morphed() {
			return morphed, true
		}
		return normal, true
	}
}
