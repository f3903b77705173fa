package repository

// mapping はインデックス作成時に送るマッピング定義です。
type mapping = map[string]interface{}

func englishText() mapping {
	return mapping{"type": "text", "analyzer": "english"}
}

func keyword() mapping {
	return mapping{"type": "keyword"}
}

// textWithKeyword は全文検索と完全一致の両方に使うフィールドです。
func textWithKeyword() mapping {
	return mapping{"type": "text", "fields": mapping{"keyword": keyword()}}
}

func jobsMapping() mapping {
	return mapping{
		"mappings": mapping{
			"properties": mapping{
				"id":               keyword(),
				"createdBy":        mapping{"type": "keyword", "index": false},
				"title":            englishText(),
				"company":          englishText(),
				"description":      englishText(),
				"requirements":     englishText(),
				"responsibilities": englishText(),
				"location": mapping{
					"properties": mapping{
						"city":    textWithKeyword(),
						"state":   textWithKeyword(),
						"country": textWithKeyword(),
						"remote":  mapping{"type": "boolean"},
						"type":    keyword(),
					},
				},
				"salary": mapping{
					"properties": mapping{
						"min":      mapping{"type": "float"},
						"max":      mapping{"type": "float"},
						"currency": keyword(),
						"period":   keyword(),
					},
				},
				"jobType":         keyword(),
				"experienceLevel": keyword(),
				"categories":      keyword(),
				"tags":            keyword(),
				"createdAt":       mapping{"type": "date"},
				"updatedAt":       mapping{"type": "date"},
			},
		},
	}
}

func applicantsMapping() mapping {
	return mapping{
		"mappings": mapping{
			"properties": mapping{
				"id":       keyword(),
				"userId":   keyword(),
				"headline": englishText(),
				"summary":  englishText(),
				"skills": mapping{
					"type": "nested",
					"properties": mapping{
						"name":  textWithKeyword(),
						"level": keyword(),
					},
				},
				"workExperience": mapping{
					"type": "nested",
					"properties": mapping{
						"position":    englishText(),
						"company":     englishText(),
						"description": englishText(),
					},
				},
				"education": mapping{
					"type": "nested",
					"properties": mapping{
						"institution": englishText(),
						"degree":      englishText(),
						"field":       englishText(),
					},
				},
				"preferredJobTypes":   keyword(),
				"preferredLocations":  keyword(),
				"preferredIndustries": keyword(),
				"isRemoteOnly":        mapping{"type": "boolean"},
				"createdAt":           mapping{"type": "date"},
				"updatedAt":           mapping{"type": "date"},
			},
		},
	}
}

func companiesMapping() mapping {
	return mapping{
		"mappings": mapping{
			"properties": mapping{
				"id": keyword(),
				"name": mapping{
					"type":     "text",
					"analyzer": "english",
					"fields":   mapping{"keyword": keyword()},
				},
				"description": englishText(),
				"industry":    keyword(),
				"location": mapping{
					"properties": mapping{
						"city":    textWithKeyword(),
						"state":   textWithKeyword(),
						"country": textWithKeyword(),
					},
				},
				"website":     keyword(),
				"size":        keyword(),
				"founded":     mapping{"type": "integer"},
				"specialties": keyword(),
				"createdAt":   mapping{"type": "date"},
				"updatedAt":   mapping{"type": "date"},
			},
		},
	}
}
