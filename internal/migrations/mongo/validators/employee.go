package validators

import "go.mongodb.org/mongo-driver/bson"

var EmployeeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"phone",
			"service_ids",
			"working_hours",
			"daily_limit",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"phone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9][0-9]{1,14}$`,
			},

			"service_ids": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"maxItems": 50,
				"items": bson.M{
					"bsonType":  "string",
					"minLength": 24,
					"maxLength": 24,
				},
			},

			"working_hours": bson.M{
				"bsonType": "object",
				"required": []string{"start", "end"},
				"properties": bson.M{
					"start": bson.M{
						"bsonType": "string",
						"pattern":  clockPattern,
					},
					"end": bson.M{
						"bsonType": "string",
						"pattern":  clockPattern,
					},
				},
			},

			"daily_limit": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  50,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
