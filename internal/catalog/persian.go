package catalog

import "github.com/mrlokans/quransync/internal/entities"

func persian(identifier, name, englishName string) entities.Edition {
	return entities.Edition{
		Identifier:  identifier,
		Language:    "fa",
		Name:        name,
		EnglishName: englishName,
		Format:      "text",
		Type:        string(entities.EditionTypeTafsir),
	}
}

// PersianTafsir lists interpretive Persian translations offered as tafsir.
// The content API does not tag them with the tafsir type.
var PersianTafsir = []entities.Edition{
	persian("fa.makarem", "تفسیر نمونه (خلاصه - مکارم شیرازی)", "Tafseer Nemuneh (Makarem)"),
	persian("fa.khorramshahi", "تفسیر و ترجمه (خرمشاهی)", "Tafseer Khorramshahi"),
	persian("fa.moezzi", "ترجمه و تفسیر (معزی)", "Tafseer Moezzi"),
	persian("fa.ansarian", "تفسیر انصاریان", "Tafseer Ansarian"),
	persian("fa.ayati", "تفسیر و ترجمه (آیتی)", "Ayati (Interpretive Translation)"),
	persian("fa.fooladvand", "تفسیر فولادوند", "Fooladvand (Commentary)"),
	persian("fa.ghomshei", "تفسیر الهی قمشه‌ای", "Elahi Ghomshei"),
	persian("fa.bahrampour", "تفسیر بهرام‌پور", "Bahrampour"),
	persian("fa.mojtabavi", "تفسیر مجتبوی", "Mojtabavi"),
	persian("fa.khorramdel", "تفسیر خرم‌دل", "Khorramdel"),
	persian("fa.gharaati", "تفسیر قرائتی", "Gharaati"),
	persian("fa.sadeqi", "تفسیر صادقی تهرانی", "Sadeqi Tehrani"),
	persian("fa.safavi", "تفسیر صفوی", "Safavi"),
}
