package killboard

const Version = "0.3.0"
