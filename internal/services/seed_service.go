package services

import (
	"database/sql"

	"partsync/internal/models"
	"partsync/internal/repos"
)

// SeedService loads the starter catalog on an empty database. Fixture ids
// are fixed strings so reseeding a wiped database reproduces the same
// catalog and client replicas stay consistent.
type SeedService struct {
	store   *repos.Store
	catalog *CatalogService
}

func NewSeedService(store *repos.Store, catalog *CatalogService) *SeedService {
	return &SeedService{store: store, catalog: catalog}
}

// Seed is a no-op when any car brand exists. Returns whether it seeded.
func (s *SeedService) Seed() (bool, error) {
	var count int
	if err := s.store.DB().QueryRow(`SELECT COUNT(*) FROM car_brands`).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	err := s.store.WithTx(func(tx *sql.Tx) error {
		carBrands := []models.CarBrand{
			{Syncable: models.Syncable{ID: "cb_toyota"}, Name: "Toyota", NameAr: "تويوتا"},
			{Syncable: models.Syncable{ID: "cb_mitsubishi"}, Name: "Mitsubishi", NameAr: "ميتسوبيشي"},
			{Syncable: models.Syncable{ID: "cb_mazda"}, Name: "Mazda", NameAr: "مازدا"},
		}
		for i := range carBrands {
			if err := s.store.InsertCarBrand(tx, &carBrands[i]); err != nil {
				return err
			}
		}

		carModels := []models.CarModel{
			{Syncable: models.Syncable{ID: "cm_camry"}, BrandID: "cb_toyota", Name: "Camry", NameAr: "كامري", YearStart: 2018, YearEnd: 2024},
			{Syncable: models.Syncable{ID: "cm_corolla"}, BrandID: "cb_toyota", Name: "Corolla", NameAr: "كورولا", YearStart: 2019, YearEnd: 2024},
			{Syncable: models.Syncable{ID: "cm_hilux"}, BrandID: "cb_toyota", Name: "Hilux", NameAr: "هايلكس", YearStart: 2016, YearEnd: 2024},
			{Syncable: models.Syncable{ID: "cm_lancer"}, BrandID: "cb_mitsubishi", Name: "Lancer", NameAr: "لانسر", YearStart: 2015, YearEnd: 2020},
			{Syncable: models.Syncable{ID: "cm_pajero"}, BrandID: "cb_mitsubishi", Name: "Pajero", NameAr: "باجيرو", YearStart: 2016, YearEnd: 2024},
			{Syncable: models.Syncable{ID: "cm_mazda3"}, BrandID: "cb_mazda", Name: "Mazda 3", NameAr: "مازدا 3", YearStart: 2019, YearEnd: 2024},
			{Syncable: models.Syncable{ID: "cm_cx5"}, BrandID: "cb_mazda", Name: "CX-5", NameAr: "سي اكس 5", YearStart: 2017, YearEnd: 2024},
		}
		for i := range carModels {
			if err := s.store.InsertCarModel(tx, &carModels[i]); err != nil {
				return err
			}
		}

		productBrands := []models.ProductBrand{
			{Syncable: models.Syncable{ID: "pb_kby"}, Name: "KBY"},
			{Syncable: models.Syncable{ID: "pb_ctr"}, Name: "CTR"},
			{Syncable: models.Syncable{ID: "pb_art"}, Name: "ART"},
		}
		for i := range productBrands {
			if err := s.store.InsertProductBrand(tx, &productBrands[i]); err != nil {
				return err
			}
		}

		categories := []models.Category{
			{Syncable: models.Syncable{ID: "cat_engine"}, Name: "Engine", NameAr: "المحرك", Icon: "engine"},
			{Syncable: models.Syncable{ID: "cat_suspension"}, Name: "Suspension", NameAr: "نظام التعليق", Icon: "car-suspension"},
			{Syncable: models.Syncable{ID: "cat_clutch"}, Name: "Clutch", NameAr: "الدبرياج", Icon: "car-clutch"},
			{Syncable: models.Syncable{ID: "cat_electricity"}, Name: "Electricity", NameAr: "الكهرباء", Icon: "lightning-bolt"},
			{Syncable: models.Syncable{ID: "cat_body"}, Name: "Body", NameAr: "الهيكل", Icon: "car-door"},
			{Syncable: models.Syncable{ID: "cat_tires"}, Name: "Tires", NameAr: "الإطارات", Icon: "car-tire-alert"},
			{Syncable: models.Syncable{ID: "cat_filters"}, Name: "Filters", NameAr: "الفلاتر", ParentID: "cat_engine", Icon: "filter"},
			{Syncable: models.Syncable{ID: "cat_oil_filter"}, Name: "Oil Filter", NameAr: "فلتر زيت", ParentID: "cat_filters", Icon: "oil"},
			{Syncable: models.Syncable{ID: "cat_air_filter"}, Name: "Air Filter", NameAr: "فلتر هواء", ParentID: "cat_filters", Icon: "air-filter"},
			{Syncable: models.Syncable{ID: "cat_spark_plugs"}, Name: "Spark Plugs", NameAr: "شمعات الإشعال", ParentID: "cat_engine", Icon: "flash"},
			{Syncable: models.Syncable{ID: "cat_shock_absorbers"}, Name: "Shock Absorbers", NameAr: "ممتص الصدمات", ParentID: "cat_suspension", Icon: "car-brake-abs"},
			{Syncable: models.Syncable{ID: "cat_clutch_kit"}, Name: "Clutch Kit", NameAr: "طقم دبرياج", ParentID: "cat_clutch", Icon: "cog"},
			{Syncable: models.Syncable{ID: "cat_batteries"}, Name: "Batteries", NameAr: "البطاريات", ParentID: "cat_electricity", Icon: "battery"},
			{Syncable: models.Syncable{ID: "cat_headlights"}, Name: "Headlights", NameAr: "المصابيح الأمامية", ParentID: "cat_electricity", Icon: "lightbulb"},
			{Syncable: models.Syncable{ID: "cat_mirrors"}, Name: "Mirrors", NameAr: "المرايا", ParentID: "cat_body", Icon: "flip-horizontal"},
		}
		for i := range categories {
			if err := s.store.InsertCategory(tx, &categories[i]); err != nil {
				return err
			}
		}

		products := []models.Product{
			{Syncable: models.Syncable{ID: "prod_oil_filter_1"}, Name: "Toyota Oil Filter", NameAr: "فلتر زيت تويوتا", Price: 45.99, SKU: "TOY-OIL-001", CategoryID: "cat_oil_filter", ProductBrandID: "pb_kby", CarModelIDs: []string{"cm_camry", "cm_corolla"}},
			{Syncable: models.Syncable{ID: "prod_air_filter_1"}, Name: "Camry Air Filter", NameAr: "فلتر هواء كامري", Price: 35.50, SKU: "CAM-AIR-001", CategoryID: "cat_air_filter", ProductBrandID: "pb_ctr", CarModelIDs: []string{"cm_camry"}},
			{Syncable: models.Syncable{ID: "prod_spark_plug_1"}, Name: "Iridium Spark Plugs Set", NameAr: "طقم شمعات إيريديوم", Price: 89.99, SKU: "SPK-IRD-001", CategoryID: "cat_spark_plugs", ProductBrandID: "pb_art", CarModelIDs: []string{"cm_camry", "cm_corolla", "cm_lancer"}},
			{Syncable: models.Syncable{ID: "prod_shock_1"}, Name: "Front Shock Absorber", NameAr: "ممتص صدمات أمامي", Price: 125.00, SKU: "SHK-FRT-001", CategoryID: "cat_shock_absorbers", ProductBrandID: "pb_kby", CarModelIDs: []string{"cm_hilux", "cm_pajero"}},
			{Syncable: models.Syncable{ID: "prod_clutch_kit_1"}, Name: "Complete Clutch Kit", NameAr: "طقم دبرياج كامل", Price: 299.99, SKU: "CLT-KIT-001", CategoryID: "cat_clutch_kit", ProductBrandID: "pb_ctr", CarModelIDs: []string{"cm_lancer", "cm_mazda3"}},
			{Syncable: models.Syncable{ID: "prod_battery_1"}, Name: "Car Battery 70Ah", NameAr: "بطارية سيارة 70 أمبير", Price: 185.00, SKU: "BAT-70A-001", CategoryID: "cat_batteries", ProductBrandID: "pb_art", CarModelIDs: []string{"cm_camry", "cm_corolla", "cm_hilux", "cm_pajero"}},
			{Syncable: models.Syncable{ID: "prod_headlight_1"}, Name: "LED Headlight Bulb H7", NameAr: "لمبة أمامية LED H7", Price: 55.00, SKU: "LED-H7-001", CategoryID: "cat_headlights", ProductBrandID: "pb_kby", CarModelIDs: []string{"cm_mazda3", "cm_cx5"}},
			{Syncable: models.Syncable{ID: "prod_mirror_1"}, Name: "Side Mirror Right", NameAr: "مرآة جانبية يمين", Price: 145.00, SKU: "MIR-R-001", CategoryID: "cat_mirrors", ProductBrandID: "pb_ctr", CarModelIDs: []string{"cm_camry"}},
		}
		for i := range products {
			if err := s.store.InsertProduct(tx, &products[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	for _, table := range models.CatalogTables {
		s.catalog.cache.InvalidateTable(table)
	}
	return true, nil
}
