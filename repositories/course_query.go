package repositories

import (
	"github.com/CPU-commits/Intranet_BCourses/models"
	"go.mongodb.org/mongo-driver/bson"
)

func (c *CourseRepository) getLookupTeacher() bson.D {
	return bson.D{
		{
			Key: "$lookup",
			Value: bson.M{
				"from":         models.USERS_COLLECTION,
				"localField":   "teacher",
				"foreignField": "_id",
				"as":           "teacher",
				"pipeline": bson.A{bson.M{
					"$project": bson.M{
						"username": 1,
					},
				}},
			},
		},
	}
}

func (c *CourseRepository) getSetTeacher() bson.D {
	return bson.D{
		{
			Key: "$set",
			Value: bson.M{
				"teacher": bson.M{
					"$arrayElemAt": bson.A{
						"$teacher", 0,
					},
				},
			},
		},
	}
}

func (c *CourseRepository) getLookupStudents() bson.D {
	return bson.D{
		{
			Key: "$lookup",
			Value: bson.M{
				"from":         models.USERS_COLLECTION,
				"localField":   "students",
				"foreignField": "_id",
				"as":           "students_lookup",
				"pipeline": bson.A{bson.M{
					"$project": bson.M{
						"username": 1,
					},
				}},
			},
		},
	}
}

// $lookup returns users in collection order, map back to roster order
func (c *CourseRepository) getSetStudents() bson.D {
	return bson.D{
		{
			Key: "$set",
			Value: bson.M{
				"students": bson.M{
					"$filter": bson.M{
						"input": bson.M{
							"$map": bson.M{
								"input": "$students",
								"as":    "student",
								"in": bson.M{
									"$arrayElemAt": bson.A{
										bson.M{
											"$filter": bson.M{
												"input": "$students_lookup",
												"as":    "user",
												"cond": bson.M{
													"$eq": bson.A{"$$user._id", "$$student"},
												},
											},
										},
										0,
									},
								},
							},
						},
						"as": "student",
						"cond": bson.M{
							"$ne": bson.A{"$$student", nil},
						},
					},
				},
			},
		},
	}
}

func (c *CourseRepository) getUnsetStudentsLookup() bson.D {
	return bson.D{
		{
			Key: "$project",
			Value: bson.M{
				"students_lookup": 0,
			},
		},
	}
}

func (c *CourseRepository) getSortByID() bson.D {
	return bson.D{
		{
			Key: "$sort",
			Value: bson.M{
				"_id": 1,
			},
		},
	}
}
