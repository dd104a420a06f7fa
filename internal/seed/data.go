package seed

import "github.com/yahayabawa/maktaba/internal/entities"

type demoBook struct {
	book     entities.Book
	category string
	scholar  string
	chapters []entities.Chapter
}

func demoCategories() []entities.Category {
	return []entities.Category{
		{
			Name:        "Fiqh",
			Description: "Islamic jurisprudence covering acts of worship and transactions",
			Icon:        "scale",
			Featured:    true,
		},
		{
			Name:        "Aqeedah",
			Description: "Islamic creed and theology",
			Icon:        "heart",
			Featured:    true,
		},
		{
			Name:        "Hadith",
			Description: "Prophetic traditions and their sciences",
			Icon:        "book-open",
		},
		{
			Name:        "Tafsir",
			Description: "Exegesis of the Quran",
			Icon:        "book",
		},
		{
			Name:        "Seerah",
			Description: "Biography of the Prophet and Islamic history",
			Icon:        "map",
		},
	}
}

func demoScholars() []entities.Scholar {
	return []entities.Scholar{
		{
			Name:        "Imam An-Nawawi",
			ArabicName:  "الإمام النووي",
			Initial:     "N",
			Era:         "7th century AH",
			Description: "Shafi'i jurist and hadith scholar from Nawa, Syria",
			Biography:   "Yahya ibn Sharaf an-Nawawi authored enduring works in hadith and fiqh in a short life of 45 years, including Riyadh as-Salihin and the Forty Hadith.",
			Specialties: []string{"Hadith", "Fiqh"},
			BirthYear:   1233,
			DeathYear:   1277,
			BirthPlace:  "Nawa, Syria",
			Featured:    true,
			Timeline: []entities.TimelineEvent{
				{Year: 1233, Title: "Birth in Nawa", Description: "Born in the village of Nawa in the Hauran region of Syria"},
				{Year: 1251, Title: "Move to Damascus", Description: "Began studies at the Rawahiyya madrasa"},
				{Year: 1277, Title: "Death", Description: "Passed away in Nawa after returning from Damascus"},
			},
		},
		{
			Name:        "Ibn Kathir",
			ArabicName:  "ابن كثير",
			Initial:     "K",
			Era:         "8th century AH",
			Description: "Historian and exegete of Damascus",
			Biography:   "Ismail ibn Umar ibn Kathir is best known for his tafsir of the Quran and the historical compendium Al-Bidaya wan-Nihaya.",
			Specialties: []string{"Tafsir", "History"},
			BirthYear:   1300,
			DeathYear:   1373,
			BirthPlace:  "Busra, Syria",
			Featured:    true,
		},
		{
			Name:        "Imam Al-Bukhari",
			ArabicName:  "الإمام البخاري",
			Initial:     "B",
			Era:         "3rd century AH",
			Description: "Compiler of the most authentic hadith collection",
			Biography:   "Muhammad ibn Ismail al-Bukhari travelled across the Muslim world collecting traditions, distilling some 600,000 reports into his Sahih.",
			Specialties: []string{"Hadith"},
			BirthYear:   810,
			DeathYear:   870,
			BirthPlace:  "Bukhara",
		},
	}
}

func demoBooks() []demoBook {
	return []demoBook{
		{
			category: "Hadith",
			scholar:  "Imam An-Nawawi",
			book: entities.Book{
				Title:       "The Forty Hadith",
				ArabicTitle: "الأربعون النووية",
				Author:      "Imam An-Nawawi",
				Language:    entities.LanguageArabic,
				Description: "Forty-two foundational hadith, each chosen as a pillar of the religion, with a share of every field of knowledge.",
				TotalCopies: 5, AvailableCopies: 5,
				Featured: true,
				Shelf:    "A1", Section: "Hadith",
			},
			chapters: []entities.Chapter{
				{OrderNumber: 1, Title: "Actions are by intentions", ArabicTitle: "إنما الأعمال بالنيات", Content: "The first hadith establishes that deeds are judged by their intentions and every person shall have what they intended.", Pages: 4},
				{OrderNumber: 2, Title: "The hadith of Jibril", ArabicTitle: "حديث جبريل", Content: "The angel Jibril questions the Prophet about Islam, Iman and Ihsan, defining the three levels of the religion.", Pages: 6},
			},
		},
		{
			category: "Hadith",
			scholar:  "Imam An-Nawawi",
			book: entities.Book{
				Title:       "Riyadh as-Salihin",
				ArabicTitle: "رياض الصالحين",
				Author:      "Imam An-Nawawi",
				Language:    entities.LanguageArabic,
				Description: "Gardens of the Righteous, a thematic arrangement of nearly two thousand hadith on worship, manners and the purification of the heart.",
				TotalCopies: 3, AvailableCopies: 3,
				Shelf: "A1", Section: "Hadith",
			},
		},
		{
			category: "Tafsir",
			scholar:  "Ibn Kathir",
			book: entities.Book{
				Title:       "Tafsir Ibn Kathir",
				ArabicTitle: "تفسير ابن كثير",
				Author:      "Ibn Kathir",
				Language:    entities.LanguageArabic,
				Description: "A tafsir of the Quran by the Quran itself, then by the Sunnah and the explanations of the first generations.",
				TotalCopies: 2, AvailableCopies: 2,
				Featured: true,
				Shelf:    "B2", Section: "Tafsir",
			},
		},
		{
			category: "Hadith",
			scholar:  "Imam Al-Bukhari",
			book: entities.Book{
				Title:       "Sahih al-Bukhari",
				ArabicTitle: "صحيح البخاري",
				Author:      "Imam Al-Bukhari",
				Language:    entities.LanguageArabic,
				Description: "The most rigorously authenticated collection of prophetic traditions, arranged by jurisprudential topic.",
				TotalCopies: 4, AvailableCopies: 4,
				Shelf: "A2", Section: "Hadith",
			},
		},
	}
}
