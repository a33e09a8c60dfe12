package produce

import amqp "github.com/rabbitmq/amqp091-go"

type Produce struct {
	AccessEvents *AccessEventService
}

var produceInstance *Produce

func InitProduce(channel *amqp.Channel) *Produce {
	if produceInstance != nil {
		return produceInstance
	}

	accessEvents := InitAccessEventService(channel)
	if accessEvents == nil {
		panic("Failed to initialize Access Event service")
	}

	produceInstance = &Produce{
		AccessEvents: accessEvents,
	}

	return produceInstance
}

func GetProduce() *Produce {
	if produceInstance == nil {
		panic("Produce not initialized. Call InitProduce() first.")
	}
	return produceInstance
}
