// Package config holds the rotation settings: a flat set of toggles and
// thresholds loaded once at startup and replaced wholesale between ticks.
package config

import "time"

// Pet names the permanent demon to keep summoned.
type Pet string

const (
	PetAuto       Pet = "auto"
	PetImp        Pet = "imp"
	PetVoidwalker Pet = "voidwalker"
	PetSuccubus   Pet = "succubus"
	PetFelhunter  Pet = "felhunter"
	PetFelguard   Pet = "felguard"
	PetInfernal   Pet = "infernal"
	PetDoomguard  Pet = "doomguard"
	PetManual     Pet = "manual"
)

// GrimoirePet names the Grimoire of Service demon. GrimoireMain follows the
// permanent pet choice.
type GrimoirePet string

const (
	GrimoireMain       GrimoirePet = "main"
	GrimoireImp        GrimoirePet = "imp"
	GrimoireVoidwalker GrimoirePet = "voidwalker"
	GrimoireSuccubus   GrimoirePet = "succubus"
	GrimoireFelhunter  GrimoirePet = "felhunter"
	GrimoireInfernal   GrimoirePet = "infernal"
	GrimoireDoomguard  GrimoirePet = "doomguard"
)

// Settings is read-only during a tick. Percentages are whole numbers 0-100.
type Settings struct {
	DisableOOCFishbot    bool `yaml:"disable_ooc_fishbot" json:"disable_ooc_fishbot" env:"DISABLE_OOC_FISHBOT"`
	BossHealthPercentage int  `yaml:"boss_health_percentage" json:"boss_health_percentage" env:"BOSS_HEALTH_PERCENTAGE" validate:"min=100,max=10000"`
	BossLevelIncrease    int  `yaml:"boss_level_increase" json:"boss_level_increase" env:"BOSS_LEVEL_INCREASE" validate:"min=0,max=100"`

	UsePet         bool `yaml:"use_pet" json:"use_pet" env:"USE_PET"`
	SelectedPet    Pet  `yaml:"selected_pet" json:"selected_pet" env:"SELECTED_PET" validate:"oneof=auto imp voidwalker succubus felhunter felguard infernal doomguard manual"`
	FunnelPetHP    int  `yaml:"funnel_pet_hp" json:"funnel_pet_hp" env:"FUNNEL_PET_HP" validate:"min=0,max=100"`
	FunnelPlayerHP int  `yaml:"funnel_player_hp" json:"funnel_player_hp" env:"FUNNEL_PLAYER_HP" validate:"min=0,max=100"`

	UseAdditionalDPSPet         bool        `yaml:"use_additional_dps_pet" json:"use_additional_dps_pet" env:"USE_ADDITIONAL_DPS_PET"`
	UseAdditionalDPSPetBossOnly bool        `yaml:"use_additional_dps_pet_boss_only" json:"use_additional_dps_pet_boss_only" env:"USE_ADDITIONAL_DPS_PET_BOSS_ONLY"`
	SelectedGrimoirePet         GrimoirePet `yaml:"selected_grimoire_pet" json:"selected_grimoire_pet" env:"SELECTED_GRIMOIRE_PET" validate:"oneof=main imp voidwalker succubus felhunter infernal doomguard"`
	UseDarkSoul                 bool        `yaml:"use_dark_soul" json:"use_dark_soul" env:"USE_DARK_SOUL"`
	UseDarkSoulBossOnly         bool        `yaml:"use_dark_soul_boss_only" json:"use_dark_soul_boss_only" env:"USE_DARK_SOUL_BOSS_ONLY"`

	FearDoFear               bool          `yaml:"fear_do_fear" json:"fear_do_fear" env:"FEAR_DO_FEAR"`
	FearBanTime              time.Duration `yaml:"fear_ban_time" json:"fear_ban_time" env:"FEAR_BAN_TIME" validate:"min=1s,max=5m"`
	UseShadowfuryAsInterrupt bool          `yaml:"use_shadowfury_as_interrupt" json:"use_shadowfury_as_interrupt" env:"USE_SHADOWFURY_AS_INTERRUPT"`
	UseSelfSoulstone         bool          `yaml:"use_self_soulstone" json:"use_self_soulstone" env:"USE_SELF_SOULSTONE"`

	AutomaticManaManagement           bool `yaml:"automatic_mana_management" json:"automatic_mana_management" env:"AUTOMATIC_MANA_MANAGEMENT"`
	AutomaticManaManagementPercentage int  `yaml:"automatic_mana_management_percentage" json:"automatic_mana_management_percentage" env:"AUTOMATIC_MANA_MANAGEMENT_PERCENTAGE" validate:"min=0,max=100"`

	DarkBargainHealth      int `yaml:"dark_bargain_health" json:"dark_bargain_health" env:"DARK_BARGAIN_HEALTH" validate:"min=0,max=100"`
	SacrificialPactHealth  int `yaml:"sacrificial_pact_health" json:"sacrificial_pact_health" env:"SACRIFICIAL_PACT_HEALTH" validate:"min=0,max=100"`
	UnendingResolveHealth  int `yaml:"unending_resolve_health" json:"unending_resolve_health" env:"UNENDING_RESOLVE_HEALTH" validate:"min=0,max=100"`
	DarkRegenerationHealth int `yaml:"dark_regeneration_health" json:"dark_regeneration_health" env:"DARK_REGENERATION_HEALTH" validate:"min=0,max=100"`
	MortalCoilHealth       int `yaml:"mortal_coil_health" json:"mortal_coil_health" env:"MORTAL_COIL_HEALTH" validate:"min=0,max=100"`
	EmberTapHealth         int `yaml:"ember_tap_health" json:"ember_tap_health" env:"EMBER_TAP_HEALTH" validate:"min=0,max=100"`

	HavocHealthPercentage int           `yaml:"havoc_health_percentage" json:"havoc_health_percentage" env:"HAVOC_HEALTH_PERCENTAGE" validate:"min=0,max=100"`
	UseHavocOnFocus       bool          `yaml:"use_havoc_on_focus" json:"use_havoc_on_focus" env:"USE_HAVOC_ON_FOCUS"`
	ImmolateLock          time.Duration `yaml:"immolate_lock" json:"immolate_lock" env:"IMMOLATE_LOCK" validate:"min=0,max=1m"`

	UseHellfire              bool `yaml:"use_hellfire" json:"use_hellfire" env:"USE_HELLFIRE"`
	HellfireHealthPercentage int  `yaml:"hellfire_health_percentage" json:"hellfire_health_percentage" env:"HELLFIRE_HEALTH_PERCENTAGE" validate:"min=0,max=100"`
	MorphEntryFury           int  `yaml:"morph_entry_fury" json:"morph_entry_fury" env:"MORPH_ENTRY_FURY" validate:"min=0,max=1000"`
	MorphExitFury            int  `yaml:"morph_exit_fury" json:"morph_exit_fury" env:"MORPH_EXIT_FURY" validate:"min=0,max=1000"`

	RuleFailureLimit int `yaml:"rule_failure_limit" json:"rule_failure_limit" env:"RULE_FAILURE_LIMIT" validate:"min=1,max=100"`
}

// Defaults mirrors the shipped profile.
func Defaults() Settings {
	return Settings{
		DisableOOCFishbot:    true,
		BossHealthPercentage: 500,
		BossLevelIncrease:    5,

		UsePet:         true,
		SelectedPet:    PetAuto,
		FunnelPetHP:    55,
		FunnelPlayerHP: 90,

		UseAdditionalDPSPet:         true,
		UseAdditionalDPSPetBossOnly: true,
		SelectedGrimoirePet:         GrimoireMain,
		UseDarkSoul:                 true,
		UseDarkSoulBossOnly:         false,

		FearDoFear:               true,
		FearBanTime:              10 * time.Second,
		UseShadowfuryAsInterrupt: true,
		UseSelfSoulstone:         true,

		AutomaticManaManagement:           true,
		AutomaticManaManagementPercentage: 65,

		DarkBargainHealth:      50,
		SacrificialPactHealth:  60,
		UnendingResolveHealth:  50,
		DarkRegenerationHealth: 60,
		MortalCoilHealth:       50,
		EmberTapHealth:         35,

		HavocHealthPercentage: 40,
		UseHavocOnFocus:       true,
		ImmolateLock:          2 * time.Second,

		UseHellfire:              false,
		HellfireHealthPercentage: 50,
		MorphEntryFury:           850,
		MorphExitFury:            750,

		RuleFailureLimit: 3,
	}
}
