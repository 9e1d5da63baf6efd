package killboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityImage(t *testing.T) {
	assert.Equal(t, "https://images.evetech.net/characters/90000001/portrait",
		Entity{Kind: KindCharacter, ID: 90000001}.Image())
	assert.Equal(t, "https://images.evetech.net/corporations/98000001/logo",
		Entity{Kind: KindCorporation, ID: 98000001}.Image())
	assert.Equal(t, "https://images.evetech.net/types/587/icon",
		Entity{Kind: KindItemType, ID: 587}.Image())

	assert.Empty(t, Entity{Kind: KindSystem, ID: 30000142}.Image(),
		"locations have no image-server entry")
}

func TestEntityRef(t *testing.T) {
	entity := Entity{Kind: KindCharacter, ID: 90000001, Name: "Karkoti Rend", CorporationID: 98000001}

	ref := entity.Ref()

	assert.Equal(t, entity.ID, ref.ID)
	assert.Equal(t, entity.Name, ref.Name)
	assert.Equal(t, entity.Image(), ref.Image)
}

func TestItemQuantity(t *testing.T) {
	assert.Equal(t, int64(3), Item{Dropped: 1, Destroyed: 2}.Quantity())
	assert.Zero(t, Item{}.Quantity())
}

func TestNewConfig(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("ESI_CONTACT_INFORMATION", "ops@example.com")
	t.Setenv("ZKILLBOARD_QUEUE_ID", "killboard-test")
	t.Setenv("PRICE_REGION_ID", "")
	t.Setenv("ENVIRONMENT", EnvironmentProduction)

	config, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvironmentProduction, config.Environment)
	assert.Equal(t, 8081, config.Port)
	assert.Equal(t, int32(DefaultPriceRegionID), config.PriceRegionID)
}

func TestNewConfigMissingRedisURL(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("ESI_CONTACT_INFORMATION", "ops@example.com")
	t.Setenv("ZKILLBOARD_QUEUE_ID", "killboard-test")

	_, err := NewConfig()
	assert.EqualError(t, err, "missing redis url")
}

func TestNewConfigPriceRegionOverride(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("ESI_CONTACT_INFORMATION", "ops@example.com")
	t.Setenv("ZKILLBOARD_QUEUE_ID", "killboard-test")

	t.Setenv("PRICE_REGION_ID", "10000043")
	config, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, int32(10000043), config.PriceRegionID)

	t.Setenv("PRICE_REGION_ID", "domain")
	_, err = NewConfig()
	assert.ErrorContains(t, err, "invalid price region ID")
}
