package validators

import "go.mongodb.org/mongo-driver/bson"

var AlertValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"title",
			"message",
			"type",
			"priority",
			"target_audience",
			"created_at",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"title": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"message": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 2000,
			},

			"type": bson.M{
				"bsonType": "string",
				"enum":     []string{"info", "warning", "urgent", "success"},
			},

			"priority": bson.M{
				"bsonType": "string",
				"enum":     []string{"low", "normal", "high"},
			},

			"target_audience": bson.M{
				"bsonType": "string",
			},

			"expires_at": bson.M{
				"bsonType": []string{"date", "null"},
			},
		},
	},
}
