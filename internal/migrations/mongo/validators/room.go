package validators

import "go.mongodb.org/mongo-driver/bson"

var MeetingRoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "name", "location", "floor", "capacity"},
		"properties": bson.M{
			"_id":       bson.M{"bsonType": "string", "minLength": 1},
			"name":      bson.M{"bsonType": "string", "minLength": 1},
			"location":  bson.M{"bsonType": "string", "minLength": 1},
			"floor":     bson.M{"bsonType": []string{"int", "long"}},
			"capacity":  bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
			"equipment": bson.M{"bsonType": "string"},
		},
	},
}
